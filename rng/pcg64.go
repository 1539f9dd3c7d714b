// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rng 提供可重現（seeded）的 PCG64 亂數核心，
// 作為資料產生器與 gonum distuv 分佈的亂數來源。
//
// The PCG algorithm is designed by Melissa O'Neill.
// The bounded generation logic (IntN) is adapted from the Go standard
// library (math/rand), which is licensed under the BSD 3-Clause License.
package rng

import (
	"crypto/rand"
	"math"
	"math/big"
	"math/bits"
	r2 "math/rand/v2"
)

// Source 是本套件對外承諾的最小亂數能力。
//
// 滿足 math/rand/v2 的 rand.Source（只要求 Uint64），
// 因此可直接塞進 gonum distuv 各分佈的 Src 欄位。
type Source interface {
	Uint64() uint64
	Float64() float64
	IntN(int) int
}

// PCG64 亂數產生器
type PCG64 struct {
	seed int64
	rng  *r2.PCG
}

// New 以指定 seed 建立 PCG64。相同 seed 產生相同序列。
func New(seed int64) *PCG64 {
	x := uint64(seed) ^ (0x9e3779b97f4a7c15)
	hi := splitmix64(x)
	lo := splitmix64(x ^ 0xDA942042E4DD58B5)
	return &PCG64{seed: seed, rng: r2.NewPCG(hi, lo)}
}

// NewSeed 以 crypto/rand 產生 (0, MaxInt64) 的種子。
func NewSeed() int64 {
	for {
		n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			// crypto/rand 失敗時退回 runtime 的亂數
			return max(1, r2.Int64())
		}
		if s := n.Int64(); s > 0 {
			return s
		}
	}
}

// Seed 回傳建立時的種子（方便報表記錄、重現）
func (r *PCG64) Seed() int64 {
	return r.seed
}

// Uint64 回傳非負整數uint64亂數
func (r *PCG64) Uint64() uint64 {
	return r.rng.Uint64()
}

// Float64 產出 [0,1) 的 float64（53bits精度）
func (r *PCG64) Float64() float64 {
	return float64(r.Uint64()<<11>>11) / (1 << 53)
}

// IntN 產出[0,n) 的整數，若 max <= 0 回傳 -1
func (r *PCG64) IntN(max int) int {
	if max <= 0 {
		return -1
	}
	return int(r.uint64n(uint64(max)))
}

// Snapshot 取得當下內部狀態
func (r *PCG64) Snapshot() ([]byte, error) {
	return r.rng.MarshalBinary()
}

// Restore 恢復內部狀態
func (r *PCG64) Restore(data []byte) error {
	return r.rng.UnmarshalBinary(data)
}

// splitmix64 將輸入值混洗成新的 64-bit 狀態，用於種子展開。
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// uint64n 回傳 [0,n) 的無偏亂數（基於乘法高位與拒絕採樣）。
func (r *PCG64) uint64n(n uint64) uint64 {
	if n&(n-1) == 0 { // n is power of two, can mask
		return r.Uint64() & (n - 1)
	}
	hi, lo := bits.Mul64(r.Uint64(), n)
	if lo < n {
		thresh := -n % n
		for lo < thresh {
			hi, lo = bits.Mul64(r.Uint64(), n)
		}
	}
	return hi
}
