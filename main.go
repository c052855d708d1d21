package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/matysek/pip-accel/internal/cache"
	"github.com/matysek/pip-accel/internal/config"
	"github.com/matysek/pip-accel/internal/logging"
	"github.com/matysek/pip-accel/internal/server"
	"github.com/matysek/pip-accel/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
	serve       bool
	listenAddr  string
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	if opts.configPath != "" {
		if err := os.Setenv(config.EnvConfigFile, opts.configPath); err != nil {
			fmt.Fprintf(stdErr, "设置配置路径失败: %v\n", err)
			return 1
		}
	}

	cfg, err := config.Load(true, true)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		return checkConfiguration(cfg, logger)
	}

	if opts.serve {
		if err := startCacheServer(cfg, logger, opts.listenAddr); err != nil {
			fmt.Fprintf(stdErr, "缓存服务启动失败: %v\n", err)
			return 1
		}
		return 0
	}

	printEffectiveConfiguration(cfg)
	return 0
}

// checkConfiguration 校验合并后的配置项，遇到无法解析的取值或未知键时报告。
func checkConfiguration(cfg *config.Config, logger *logrus.Logger) int {
	fileOpts, err := cfg.FileOptions()
	if err != nil {
		fmt.Fprintf(stdErr, "配置校验失败: %v\n", err)
		return 1
	}
	if _, err := cfg.AutoInstall(); err != nil {
		fmt.Fprintf(stdErr, "配置校验失败: %v\n", err)
		return 1
	}

	fields := logging.BaseFields("check_config", cfg.DataDirectory())
	fields["source_index"] = cfg.SourceIndex()
	fields["binary_cache"] = cfg.BinaryCache()
	fields["download_cache"] = cfg.DownloadCache()
	fields["cache_format_revision"] = cfg.CacheFormatRevision()
	if fileOpts.S3Bucket != "" {
		fields["s3_cache_bucket"] = fileOpts.S3Bucket
	}
	if unknown := cfg.UnknownOptions(); len(unknown) > 0 {
		fields["unknown_options"] = unknown
		logger.WithFields(fields).Warn("配置包含未识别的键")
	} else {
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
	}
	return 0
}

// printEffectiveConfiguration 输出合并环境变量/配置文件/默认值后的有效配置。
func printEffectiveConfiguration(cfg *config.Config) {
	fmt.Fprintf(stdOut, "data-directory: %s\n", cfg.DataDirectory())
	fmt.Fprintf(stdOut, "source-index: %s\n", cfg.SourceIndex())
	fmt.Fprintf(stdOut, "binary-cache: %s\n", cfg.BinaryCache())
	fmt.Fprintf(stdOut, "download-cache: %s\n", cfg.DownloadCache())
	fmt.Fprintf(stdOut, "cache-format-revision: %d\n", cfg.CacheFormatRevision())
	if bucket := cfg.S3CacheBucket(); bucket != "" {
		fmt.Fprintf(stdOut, "s3-cache-bucket: %s\n", bucket)
		if prefix := cfg.S3CachePrefix(); prefix != "" {
			fmt.Fprintf(stdOut, "s3-cache-prefix: %s\n", prefix)
		}
	}
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("pip-accel", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
		serve      bool
		listenAddr string
	)

	fs.StringVar(&configFlag, "config", "", "附加配置文件路径（等价于 PIP_ACCEL_CONFIG）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")
	fs.BoolVar(&serve, "serve", false, "以共享缓存服务模式运行")
	fs.StringVar(&listenAddr, "listen", ":7750", "共享缓存服务的监听地址")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv(config.EnvConfigFile)
	if configFlag != "" {
		path = configFlag
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
		serve:       serve,
		listenAddr:  listenAddr,
	}, nil
}

// startCacheServer 以二进制缓存目录为存储启动共享缓存服务。
func startCacheServer(cfg *config.Config, logger *logrus.Logger, listenAddr string) error {
	backend, err := cache.NewFileBackend(cfg.BinaryCache())
	if err != nil {
		return err
	}

	app, err := server.NewApp(server.AppOptions{
		Logger:  logger,
		Backend: backend,
	})
	if err != nil {
		return err
	}

	fields := logging.BaseFields("listen", cfg.DataDirectory())
	fields["address"] = listenAddr
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("共享缓存服务启动")

	return app.Listen(listenAddr)
}
