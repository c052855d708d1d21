package requirement

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDistributionFormatDetection(t *testing.T) {
	cfg := testConfig(t, t.TempDir())

	t.Run("仅源码发行版证据", func(t *testing.T) {
		req := New(cfg, &ResolvedRequirement{PackageName: "foo", SourceDir: newSdistDir(t, "foo", "1.0")})
		format, err := req.DistributionFormat()
		if err != nil {
			t.Fatalf("探测失败: %v", err)
		}
		if format != SourceDistribution {
			t.Fatalf("应判定为源码发行版，得到 %v", format)
		}
	})

	t.Run("仅wheel证据", func(t *testing.T) {
		req := New(cfg, &ResolvedRequirement{PackageName: "foo", SourceDir: newWheelDir(t, "foo", "1.0")})
		format, err := req.DistributionFormat()
		if err != nil {
			t.Fatalf("探测失败: %v", err)
		}
		if format != WheelDistribution {
			t.Fatalf("应判定为 wheel，得到 %v", format)
		}
	})

	t.Run("证据冲突", func(t *testing.T) {
		dir := newSdistDir(t, "foo", "1.0")
		writeTestFile(t, filepath.Join(dir, "foo-1.0.dist-info", "WHEEL"), "Wheel-Version: 1.0\n")

		req := New(cfg, &ResolvedRequirement{PackageName: "foo", SourceDir: dir})
		_, err := req.DistributionFormat()
		var ambiguous *AmbiguousDistributionFormatError
		if !errors.As(err, &ambiguous) {
			t.Fatalf("两种证据并存应返回 AmbiguousDistributionFormatError，得到 %v", err)
		}
		if ambiguous.Requirement != "foo" || ambiguous.Directory != dir {
			t.Fatalf("错误应携带需求名与目录: %+v", ambiguous)
		}
	})

	t.Run("证据缺失", func(t *testing.T) {
		dir := t.TempDir()
		req := New(cfg, &ResolvedRequirement{PackageName: "foo", SourceDir: dir})
		_, err := req.DistributionFormat()
		var unknown *UnknownDistributionFormatError
		if !errors.As(err, &unknown) {
			t.Fatalf("无证据应返回 UnknownDistributionFormatError，得到 %v", err)
		}
		if unknown.Directory != dir {
			t.Fatalf("错误应携带目录: %+v", unknown)
		}
	})

	t.Run("错误携带版本约束", func(t *testing.T) {
		dir := t.TempDir()
		req := New(cfg, &ResolvedRequirement{PackageName: "foo", Constraint: "==1.0", SourceDir: dir})
		_, err := req.DistributionFormat()
		var unknown *UnknownDistributionFormatError
		if !errors.As(err, &unknown) {
			t.Fatalf("无证据应返回 UnknownDistributionFormatError，得到 %v", err)
		}
		if unknown.Requirement != "foo==1.0" {
			t.Fatalf("错误应携带需求行形态的标识: %+v", unknown)
		}
	})
}

func TestVersionFromSdistMetadata(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	req := New(cfg, &ResolvedRequirement{PackageName: "foo", SourceDir: newSdistDir(t, "foo", "2.5.1")})

	version, err := req.Version()
	if err != nil {
		t.Fatalf("读取版本失败: %v", err)
	}
	if version != "2.5.1" {
		t.Fatalf("应读取 PKG-INFO 的 Version 字段，得到 %q", version)
	}
}

func TestVersionFromWheelMetadata(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	req := New(cfg, &ResolvedRequirement{PackageName: "foo", SourceDir: newWheelDir(t, "foo", "3.0")})

	version, err := req.Version()
	if err != nil {
		t.Fatalf("读取版本失败: %v", err)
	}
	if version != "3.0" {
		t.Fatalf("应读取 dist-info/METADATA 的 Version 字段，得到 %q", version)
	}
}

func TestWrongMetadataAccessorIsContractViolation(t *testing.T) {
	cfg := testConfig(t, t.TempDir())

	sdistReq := New(cfg, &ResolvedRequirement{PackageName: "foo", SourceDir: newSdistDir(t, "foo", "1.0")})
	if _, err := sdistReq.WheelMetadata(); err == nil {
		t.Fatalf("对源码发行版调用 WheelMetadata 应报错")
	} else {
		var wrong *WrongDistributionFormatError
		if !errors.As(err, &wrong) {
			t.Fatalf("应返回 WrongDistributionFormatError，得到 %T", err)
		}
		if wrong.Want != WheelDistribution || wrong.Got != SourceDistribution {
			t.Fatalf("错误应说明期望与实际格式: %+v", wrong)
		}
	}

	wheelReq := New(cfg, &ResolvedRequirement{PackageName: "foo", SourceDir: newWheelDir(t, "foo", "1.0")})
	if _, err := wheelReq.SdistMetadata(); err == nil {
		t.Fatalf("对 wheel 调用 SdistMetadata 应报错")
	}
}

func TestRelatedArchivesMatching(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	sources := cfg.SourceIndex()

	writeTestFile(t, filepath.Join(sources, "foo-1.0.tar.gz"), "a")
	writeTestFile(t, filepath.Join(sources, "Foo_1.0.zip"), "b")
	writeTestFile(t, filepath.Join(sources, "foo-1.0.1.tar.gz"), "c")
	writeTestFile(t, filepath.Join(sources, "foo-1.0.whl"), "d")
	writeTestFile(t, filepath.Join(sources, "bar-1.0.tar.gz"), "e")

	req := New(cfg, &ResolvedRequirement{PackageName: "foo", SourceDir: newSdistDir(t, "foo", "1.0")})
	archives, err := req.RelatedArchives()
	if err != nil {
		t.Fatalf("扫描归档失败: %v", err)
	}

	want := []string{
		filepath.Join(sources, "Foo_1.0.zip"),
		filepath.Join(sources, "foo-1.0.tar.gz"),
	}
	if len(archives) != len(want) {
		t.Fatalf("应匹配 %v，得到 %v", want, archives)
	}
	for i := range want {
		if archives[i] != want[i] {
			t.Fatalf("应匹配 %v，得到 %v", want, archives)
		}
	}
}

func TestLastModifiedUsesNewestArchive(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	sources := cfg.SourceIndex()

	older := time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	newer := time.Now().Add(-1 * time.Hour).Truncate(time.Second)

	tarball := filepath.Join(sources, "foo-1.0.tar.gz")
	zipfile := filepath.Join(sources, "Foo_1.0.zip")
	writeTestFile(t, tarball, "a")
	writeTestFile(t, zipfile, "b")
	if err := os.Chtimes(tarball, older, older); err != nil {
		t.Fatalf("设置文件时间失败: %v", err)
	}
	if err := os.Chtimes(zipfile, newer, newer); err != nil {
		t.Fatalf("设置文件时间失败: %v", err)
	}

	req := New(cfg, &ResolvedRequirement{PackageName: "foo", SourceDir: newSdistDir(t, "foo", "1.0")})
	got, err := req.LastModified()
	if err != nil {
		t.Fatalf("计算修改时间失败: %v", err)
	}
	if !got.Equal(newer) {
		t.Fatalf("应取最新归档的修改时间 %v，得到 %v", newer, got)
	}
}

func TestLastModifiedFallsBackToNow(t *testing.T) {
	// 找不到相关归档时按「刚更新」处理：宁可多失效一次缓存，也不复用过期产物。
	cfg := testConfig(t, t.TempDir())
	req := New(cfg, &ResolvedRequirement{PackageName: "foo", SourceDir: newSdistDir(t, "foo", "1.0")})

	before := time.Now()
	got, err := req.LastModified()
	if err != nil {
		t.Fatalf("计算修改时间失败: %v", err)
	}
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Fatalf("无匹配归档时应返回当前时间，得到 %v（区间 %v ~ %v）", got, before, after)
	}
}

func TestLastModifiedPropagatesScanErrors(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("PIP_ACCEL_CACHE", dataDir)
	cfg, err := loadConfigWithoutSourceIndex(t)
	if err != nil {
		t.Fatalf("构造配置失败: %v", err)
	}

	req := New(cfg, &ResolvedRequirement{PackageName: "foo", SourceDir: newSdistDir(t, "foo", "1.0")})
	if _, err := req.LastModified(); err == nil {
		t.Fatalf("源码索引目录不存在时扫描错误应上抛")
	}
}

func TestDescriptorIdempotence(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	raw := &ResolvedRequirement{PackageName: "foo", SourceDir: newSdistDir(t, "foo", "1.0")}

	first := New(cfg, raw)
	second := New(cfg, raw)

	v1, err1 := first.Version()
	v2, err2 := second.Version()
	if err1 != nil || err2 != nil {
		t.Fatalf("读取版本失败: %v / %v", err1, err2)
	}
	if v1 != v2 {
		t.Fatalf("同一需求两次包装应得到相同版本: %q vs %q", v1, v2)
	}

	f1, _ := first.DistributionFormat()
	f2, _ := second.DistributionFormat()
	if f1 != f2 {
		t.Fatalf("格式判定应一致: %v vs %v", f1, f2)
	}
}

func TestDerivedFieldsComputedOnce(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	reader := &countingReader{meta: &Metadata{Name: "foo", Version: "1.0"}}
	req := NewWithReader(cfg, &ResolvedRequirement{PackageName: "foo", SourceDir: newSdistDir(t, "foo", "1.0")}, reader)

	for i := 0; i < 3; i++ {
		if _, err := req.Version(); err != nil {
			t.Fatalf("读取版本失败: %v", err)
		}
	}
	if reader.sourceCalls != 1 {
		t.Fatalf("元数据应只读取一次，实际 %d 次", reader.sourceCalls)
	}
}

func TestLineage(t *testing.T) {
	cfg := testConfig(t, t.TempDir())

	parent := &ResolvedRequirement{PackageName: "parent", SourceDir: "/unused"}
	direct := New(cfg, parent)
	if direct.Lineage() != Direct {
		t.Fatalf("无回溯引用的需求应是 direct")
	}

	child := New(cfg, &ResolvedRequirement{PackageName: "child", SourceDir: "/unused", Origin: parent})
	if child.Lineage() != Transitive {
		t.Fatalf("带回溯引用的需求应是 transitive")
	}
}

func TestEditablePassthrough(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	req := New(cfg, &ResolvedRequirement{PackageName: "foo", SourceDir: "/unused", Develop: true})
	if !req.Editable() {
		t.Fatalf("editable 标记应原样透传")
	}
}

func TestStringRendering(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	req := New(cfg, &ResolvedRequirement{PackageName: "foo", SourceDir: newSdistDir(t, "foo", "1.0")})
	if got := req.String(); got != "foo (1.0)" {
		t.Fatalf("渲染格式应为 \"foo (1.0)\"，得到 %q", got)
	}
}
