//go:build integration

package integrationtest

import (
	"sync"

	"github.com/humanbelnik/penaltydraw/internal/config"
)

var (
	cfg     *config.Config
	cfgOnce sync.Once
)

// getConfig reads the environment prepared by TestMain.
func getConfig() *config.Config {
	cfgOnce.Do(func() {
		var err error
		cfg, err = config.Parse()
		if err != nil {
			panic(err)
		}
	})
	return cfg
}
