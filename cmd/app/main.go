package main

import (
	"github.com/humanbelnik/penaltydraw/internal/app"
	"github.com/humanbelnik/penaltydraw/internal/config"
)

func main() {
	app.Go(config.Load())
}
