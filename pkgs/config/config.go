package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Server struct {
	Address       string
	Port          uint16
	DiscoveryOnly bool
}

type Watchdog struct {
	KeepAliveSeconds int
	WatchdogSeconds  int
	Strikes          int
}

type Configuration struct {
	Server   Server
	Watchdog Watchdog
}

func NewConfig() (*Configuration, error) {
	config := Configuration{}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName(".z21")
	v.AddConfigPath("$HOME/")
	v.AddConfigPath(".")
	_ = v.SafeWriteConfig()

	v.SetDefault("server.address", "192.168.0.111")
	v.SetDefault("server.port", 21105)
	v.SetDefault("server.discoveryonly", false)
	v.SetDefault("watchdog.keepaliveseconds", 45)
	v.SetDefault("watchdog.watchdogseconds", 5)
	v.SetDefault("watchdog.strikes", 3)

	if err := v.ReadInConfig(); err != nil {
		return &Configuration{}, fmt.Errorf("cannot parse config: %s", err.Error())
	}
	if err := v.Unmarshal(&config); err != nil {
		return &config, fmt.Errorf("cannot parse config: %s", err.Error())
	}

	return &config, nil
}
