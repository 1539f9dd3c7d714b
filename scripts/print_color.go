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

package main

import "github.com/fatih/color"

// 腳本用的顏色輸出；非 TTY（CI log）時 fatih/color 會自動關閉色碼

var (
	blue   = color.New(color.FgBlue)
	yellow = color.New(color.FgYellow)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	white  = color.New(color.FgHiWhite)
)

func PrintDefault(msg string) { _, _ = color.Output.Write([]byte(msg + "\n")) }
func PrintWhite(msg string)   { _, _ = white.Println(msg) }
func PrintRed(msg string)     { _, _ = red.Println(msg) }
func PrintGreen(msg string)   { _, _ = green.Println(msg) }
func PrintYellow(msg string)  { _, _ = yellow.Println(msg) }
func PrintBlue(msg string)    { _, _ = blue.Println(msg) }
