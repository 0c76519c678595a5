package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled bool               `mapstructure:"enabled"` // 总开关
	Upload  UploadEventsConfig `mapstructure:"upload"`
}

// UploadEventsConfig 上传生命周期事件开关。
type UploadEventsConfig struct {
	Created   bool `mapstructure:"created"`
	Published bool `mapstructure:"published"`
	Hidden    bool `mapstructure:"hidden"`
	Swept     bool `mapstructure:"swept"`
	Missing   bool `mapstructure:"missing"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", true)

	v.SetDefault("events.upload.created", false)
	v.SetDefault("events.upload.published", true)
	v.SetDefault("events.upload.hidden", true)
	v.SetDefault("events.upload.swept", true)
	v.SetDefault("events.upload.missing", true)
}
