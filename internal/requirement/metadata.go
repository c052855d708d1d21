package requirement

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"os"
	"path/filepath"
)

// Metadata 是发行版元数据中这一层需要的最小子集。
type Metadata struct {
	Name    string
	Version string
}

// MetadataReader 抽象两类发行格式的元数据读取。调用方必须按探测到的格式
// 选择对应方法，格式不匹配的调用由 Requirement 在上层拦截。
type MetadataReader interface {
	ReadSourceMetadata(sourceDirectory string) (*Metadata, error)
	ReadWheelMetadata(sourceDirectory string) (*Metadata, error)
}

// FileMetadataReader 直接读取解包目录里的元数据文件：源码发行版读根目录的
// PKG-INFO，wheel 读 *.dist-info/METADATA。两种文件都是 RFC 822 风格的头部。
type FileMetadataReader struct{}

func (FileMetadataReader) ReadSourceMetadata(sourceDirectory string) (*Metadata, error) {
	return readMetadataFile(filepath.Join(sourceDirectory, "PKG-INFO"))
}

func (FileMetadataReader) ReadWheelMetadata(sourceDirectory string) (*Metadata, error) {
	matches, err := filepath.Glob(filepath.Join(sourceDirectory, "*.dist-info", "METADATA"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("在 %s 下没有找到 wheel 元数据文件", sourceDirectory)
	}
	return readMetadataFile(matches[0])
}

func readMetadataFile(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := textproto.NewReader(bufio.NewReader(f))
	header, err := reader.ReadMIMEHeader()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("解析元数据失败 (%s): %w", path, err)
	}

	meta := &Metadata{
		Name:    header.Get("Name"),
		Version: header.Get("Version"),
	}
	if meta.Version == "" {
		return nil, fmt.Errorf("元数据缺少 Version 字段 (%s)", path)
	}
	return meta, nil
}
