package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"photohall/internal/client"
	"photohall/internal/config"
	"photohall/internal/log"
	"photohall/pkg/assets"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认读取 $"+config.EnvPath+"）")
	assetDir := flag.String("assets", "", "本地图片目录")
	remote := flag.String("remote", "", "资源服务器地址，设置后忽略 -assets")
	proto := flag.String("proto", "", "传输协议 tcp|kcp")
	token := flag.String("token", "", "资源服务器访问令牌")
	level := flag.String("log", "", "日志级别 debug|info|warn|error")
	flag.Parse()

	cfg, from, err := config.Load(config.ResolvePath(*configPath))
	if err != nil {
		log.Init("info")
		log.Error("加载配置失败", "err", err)
		os.Exit(1)
	}

	c := &cfg.Client
	override(&c.AssetDir, *assetDir)
	override(&c.Remote, *remote)
	override(&c.Proto, *proto)
	override(&c.Token, *token)
	override(&c.LogLevel, *level)

	log.Init(c.LogLevel)
	log.Info("配置已加载", "from", from, "exhibits", cfg.Exhibits.CountPerSide*2)

	source, closeSource, err := openSource(c)
	if err != nil {
		log.Error("打开图片源失败", "err", err)
		os.Exit(1)
	}
	defer closeSource()

	loader := assets.NewLoader(source, assets.LoaderOptions{
		Concurrency:    c.Concurrency,
		RatePerSecond:  c.LoadRate,
		Burst:          c.Concurrency,
		MaxTextureSize: c.MaxTexture,
	})
	defer loader.Close()

	game, err := client.NewGame(cfg.Config, loader, c.WindowWidth, c.WindowHeight)
	if err != nil {
		log.Error("创建游戏失败", "err", err)
		os.Exit(1)
	}
	loader.Bind(game.Core().Exhibits)
	game.SetStatus(func() string {
		loaded, failed := loader.Stats()
		return fmt.Sprintf("requests=%d loaded=%d failed=%d", loader.Requests(), loaded, failed)
	})

	// 设置窗口选项
	ebiten.SetWindowSize(c.WindowWidth, c.WindowHeight)
	ebiten.SetWindowTitle("Photo Hall")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(client.FPS)

	// 运行游戏
	if err := ebiten.RunGame(game); err != nil {
		log.Error("游戏异常退出", "err", err)
		os.Exit(1)
	}
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// openSource 远程地址优先，否则读取本地目录
func openSource(c *config.ClientConfig) (assets.Source, func(), error) {
	if c.Remote == "" {
		src, err := assets.NewDirSource(c.AssetDir)
		if err != nil {
			return nil, nil, err
		}
		log.Info("使用本地图片目录", "dir", c.AssetDir)
		return src, func() {}, nil
	}

	remote, err := assets.DialRemote(c.Remote, c.Proto, c.Token)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if rtt, err := remote.Ping(ctx); err != nil {
		log.Warn("资源服务器无响应", "addr", c.Remote, "err", err)
	} else {
		log.Info("已连接资源服务器", "addr", c.Remote, "proto", c.Proto, "rtt", rtt)
	}
	return remote, func() { remote.Close() }, nil
}
