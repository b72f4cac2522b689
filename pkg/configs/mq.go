package configs

import (
	"time"

	"github.com/spf13/viper"
)

// MQType 消息队列类型.
type MQType string

const (
	MQTypeGoChannel MQType = "gochannel" // 进程内，默认
	MQTypeNATS      MQType = "nats"
	MQTypeRedis     MQType = "redis"

	DefaultMQURL           = "nats://localhost:4222"
	DefaultMQClientID      = "clouddrive-app" // 默认客户端ID
	DefaultMaxReconnects   = 5                // 默认最大重连次数.
	DefaultReconnectWait   = 5 * time.Second  // 默认重连等待时间.
	DefaultPingInterval    = 20 * time.Second // 默认ping间隔.
	DefaultBufferSize      = 32768            // 默认重连缓冲区大小 (32KB)
	DefaultChannelBuffer   = 256              // 默认进程内通道缓冲
	DefaultDurablePrefix   = "clouddrive"     // 默认 JetStream 持久化前缀
	DefaultMQRedisAddr     = "localhost:6379"
	DefaultSubscriberGroup = "clouddrive-audit"
)

// MQConfig 消息队列配置.
type MQConfig struct {
	Type      MQType            `mapstructure:"type"      rule:"oneof=gochannel nats redis"`
	NATS      MQNATSConfig      `mapstructure:"nats"`
	Redis     MQRedisConfig     `mapstructure:"redis"`
	GoChannel MQGoChannelConfig `mapstructure:"gochannel"`
}

// MQNATSConfig NATS MQ 配置.
type MQNATSConfig struct {
	URL                    string        `mapstructure:"url"`
	ClusterURLs            []string      `mapstructure:"cluster_urls"`
	User                   string        `mapstructure:"user"`
	Password               string        `mapstructure:"password"`
	JWT                    string        `mapstructure:"jwt"`
	NKey                   string        `mapstructure:"nkey"`
	ClientID               string        `mapstructure:"client_id"`
	MaxReconnects          int           `mapstructure:"max_reconnects"           rule:"min=-1,max=100"`
	ReconnectWait          time.Duration `mapstructure:"reconnect_wait"`
	PingInterval           time.Duration `mapstructure:"ping_interval"`
	BufferSize             int           `mapstructure:"buffer_size"              rule:"min=1024,max=1048576"`
	JetStreamEnabled       bool          `mapstructure:"jetstream_enabled"`
	JetStreamAutoProvision bool          `mapstructure:"jetstream_auto_provision"`
	JetStreamTrackMsgID    bool          `mapstructure:"jetstream_track_msg_id"`
	JetStreamAckAsync      bool          `mapstructure:"jetstream_ack_async"`
	JetStreamDurablePrefix string        `mapstructure:"jetstream_durable_prefix"`
	QueueGroup             string        `mapstructure:"queue_group"`
}

// MQRedisConfig Redis MQ 配置.
type MQRedisConfig struct {
	Addr     string `mapstructure:"addr"     rule:"hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"`
}

// MQGoChannelConfig 进程内消息队列配置.
type MQGoChannelConfig struct {
	OutputBuffer int64 `mapstructure:"output_buffer" rule:"min=0"`
}

// GetMQType 返回当前配置的消息队列类型.
func (c *MQConfig) GetMQType() MQType {
	return c.Type
}

// setDefaults 设置MQ配置的默认值.
func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.type", MQTypeGoChannel)

	// NATS 默认值
	v.SetDefault("mq.nats.url", DefaultMQURL)
	v.SetDefault("mq.nats.cluster_urls", []string{})
	v.SetDefault("mq.nats.client_id", DefaultMQClientID)
	v.SetDefault("mq.nats.max_reconnects", DefaultMaxReconnects)
	v.SetDefault("mq.nats.reconnect_wait", DefaultReconnectWait)
	v.SetDefault("mq.nats.ping_interval", DefaultPingInterval)
	v.SetDefault("mq.nats.buffer_size", DefaultBufferSize)
	v.SetDefault("mq.nats.jetstream_enabled", true)
	v.SetDefault("mq.nats.jetstream_auto_provision", true)
	v.SetDefault("mq.nats.jetstream_track_msg_id", true)
	v.SetDefault("mq.nats.jetstream_ack_async", false)
	v.SetDefault("mq.nats.jetstream_durable_prefix", DefaultDurablePrefix)
	v.SetDefault("mq.nats.queue_group", DefaultSubscriberGroup)

	// Redis 默认值
	v.SetDefault("mq.redis.addr", DefaultMQRedisAddr)
	v.SetDefault("mq.redis.password", "")
	v.SetDefault("mq.redis.db", 0)

	v.SetDefault("mq.gochannel.output_buffer", DefaultChannelBuffer)
}
