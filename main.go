package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/vintcessun/AutoAt-Bot/app"
	"github.com/vintcessun/AutoAt-Bot/config"
	"github.com/vintcessun/AutoAt-Bot/utils"
)

func main() {
	config.Init()

	container := app.NewContainer(config.GlobalConfig)
	if err := container.Initialize(); err != nil {
		panic(err)
	}

	if err := container.Start(); err != nil {
		panic(err)
	}

	mc := make(chan os.Signal, 2)
	signal.Notify(mc, os.Interrupt, syscall.SIGTERM)
	<-mc

	if err := container.Shutdown(); err != nil {
		utils.Errorf("关闭时发生错误: %v", err)
	}
}
