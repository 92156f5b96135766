package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/time/rate"

	"photohall/internal/log"
	"photohall/internal/server"
	"photohall/pkg/assets"
)

func main() {
	defaults := server.DefaultOptions()

	// 命令行参数
	address := flag.String("addr", defaults.Addr, "服务器监听地址")
	proto := flag.String("proto", defaults.Proto, "传输协议 tcp|kcp")
	root := flag.String("root", "assets", "展品图片目录")
	level := flag.String("log", "info", "日志级别 debug|info|warn|error")
	anon := flag.Bool("anon", false, "不校验访问令牌")
	reqRate := flag.Float64("rate", float64(defaults.RequestRate), "每个连接每秒的请求数")
	kcpWindow := flag.Int("kcp-window", defaults.KCPWindow, "kcp 收发窗口（包）")
	batching := flag.Bool("batching", false, "关闭 nodelay，换取吞吐")
	flag.Parse()

	log.Init(*level)

	source, err := assets.NewDirSource(*root)
	if err != nil {
		log.Error("打开图片目录失败", "root", *root, "err", err)
		os.Exit(1)
	}

	signer := server.SignerFromEnv()
	token, err := signer.GenerateAccessToken("dev", server.AccessTTL)
	if err != nil {
		log.Error("签发开发令牌失败", "err", err)
		os.Exit(1)
	}

	opts := defaults
	opts.Addr = *address
	opts.Proto = *proto
	opts.AllowAnon = *anon
	opts.RequestRate = rate.Limit(*reqRate)
	opts.KCPWindow = *kcpWindow
	opts.Batching = *batching

	assetServer := server.NewAssetServer(opts, source, signer)
	if err := assetServer.Start(); err != nil {
		log.Error("服务器启动失败", "err", err)
		os.Exit(1)
	}

	log.Info("资源服务器正在运行", "root", *root, "anon", *anon, "ttl", server.AccessTTL)
	log.Info("开发令牌", "token", token)
	log.Info("按 Ctrl+C 停止服务器")

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	assetServer.Shutdown()
}
