package requirement

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// archiveExtensions 列出源码归档的已知扩展名。wheel（.whl）走独立的已解包
// 路径，从不参与源码索引扫描，因此刻意不在此列。
var archiveExtensions = []string{
	".tar.gz",
	".tar.bz2",
	".tar.xz",
	".tgz",
	".tbz",
	".txz",
	".tar",
	".zip",
}

// EscapeName 把包名转成正则片段：字母数字原样保留，- 与 _ 互相通配（不同
// 工具对包名的规范化并不一致，foo-bar 和 foo_bar 指同一个包），其余字符一律
// 按字面转义。
func EscapeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '-' || r == '_':
			b.WriteString("[-_]")
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}

// archivePattern 编译匹配 <name><sep><version><ext> 的大小写不敏感正则。
// 名字与版本之间的连接符同样允许 - 或 _：归档文件名的连接符跟包名一样
// 会被不同工具改写。
func archivePattern(name, version string) (*regexp.Regexp, error) {
	escaped := make([]string, len(archiveExtensions))
	for i, ext := range archiveExtensions {
		escaped[i] = regexp.QuoteMeta(ext)
	}
	pattern := fmt.Sprintf("(?i)^%s%s(%s)$",
		EscapeName(name+"-"),
		regexp.QuoteMeta(version),
		strings.Join(escaped, "|"))
	return regexp.Compile(pattern)
}

// findRelatedArchives 扫描扁平的源码索引目录，按文件名返回匹配的归档绝对路径
// （按文件名排序）。目录读取错误原样上抛，这一层不做任何重试或降级。
func findRelatedArchives(sourceIndex, name, version string) ([]string, error) {
	pattern, err := archivePattern(name, version)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(sourceIndex)
	if err != nil {
		return nil, err
	}

	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pattern.MatchString(entry.Name()) {
			matches = append(matches, filepath.Join(sourceIndex, entry.Name()))
		}
	}
	return matches, nil
}
