package config

type config struct {
	Server    server    `yaml:"server" mapstructure:"server"`
	Mysql     mysql     `yaml:"mysql" mapstructure:"mysql"`
	Redis     redis     `yaml:"redis" mapstructure:"redis"`
	RabbitMq  rabbitmq  `yaml:"rabbitmq" mapstructure:"rabbitmq"`
	Jwt       jwt       `yaml:"jwt" mapstructure:"jwt"`
	Jaeger    jaeger    `yaml:"jaeger" mapstructure:"jaeger"`
	Snowflake snowflake `yaml:"snowflake" mapstructure:"snowflake"`
}

type server struct {
	Addr string `yaml:"addr"`
}

type mysql struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Charset  string `yaml:"charset"`
}

type redis struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	CommentDB int    `yaml:"comment_db" mapstructure:"comment_db"`
	LikeDB    int    `yaml:"like_db" mapstructure:"like_db"`
}

type rabbitmq struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type jwt struct {
	Secret string `yaml:"secret"`
}

type jaeger struct {
	Addr string `yaml:"addr"`
}

type snowflake struct {
	WorkerID     int64 `yaml:"worker_id" mapstructure:"worker_id"`
	DatacenterID int64 `yaml:"datacenter_id" mapstructure:"datacenter_id"`
}
