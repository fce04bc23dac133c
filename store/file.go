package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/basketrec/core"
)

// FileSource 从文件读取篮子：一个由字符串数组组成的数组。
// .json 使用 JSON，其余扩展名（.yaml/.yml）使用 YAML，例如：
//
//	- [Bacon Cheese, Fries, Coke]
//	- [Chef Burger, Fries]
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Name() string { return "file" }

func (f *FileSource) Transactions(_ context.Context) ([][]string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeNotFound, "store: read "+f.Path, err)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseBaskets(data, filepath.Ext(f.Path))
}

// ParseBaskets 按格式（扩展名，如 ".json"/".yaml"）解析篮子数据
func ParseBaskets(data []byte, ext string) ([][]string, error) {
	var baskets [][]string
	var err error
	switch strings.ToLower(ext) {
	case ".json":
		err = json.Unmarshal(data, &baskets)
	default:
		err = yaml.Unmarshal(data, &baskets)
	}
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: parse baskets", err)
	}
	return baskets, nil
}

var _ core.TransactionSource = (*FileSource)(nil)
