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

// Package profiles 組裝內建的基準測試設定檔（profile_configs 內嵌的 YAML）。
package profiles

import (
	"github.com/zintix-labs/pavalab"
	"github.com/zintix-labs/pavalab/catalog"
	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/pava"
	"github.com/zintix-labs/pavalab/profiles/profile_configs"
	"github.com/zintix-labs/pavalab/server/logger"
	"github.com/zintix-labs/pavalab/server/svrcfg"
)

func New() (*catalog.Catalog, error) {
	return catalog.New(profile_configs.FS)
}

// NewLab 以內建 profile 建立已 Freeze 的 Lab；opts 為 nil 使用預設選項
func NewLab(opts *pava.Options) (*pavalab.Lab, error) {
	return pavalab.NewAuto(opts, pavalab.Configs(profile_configs.FS))
}

func NewServerConfig() (*svrcfg.SvrCfg, error) {
	lab, err := NewLab(nil)
	if err != nil {
		return nil, errs.NewFatal("new pavalab failed:" + err.Error())
	}
	scfg := &svrcfg.SvrCfg{
		Log:      logger.NewDefaultAsyncLogger(logger.ModeDev),
		PoolSize: svrcfg.DefaultPoolSize,
		Lab:      lab,
	}
	return scfg, nil
}
