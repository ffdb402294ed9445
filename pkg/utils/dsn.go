package utils

import (
	"strings"

	"UniShare.com/config"
)

func GetMysqlDsn() string {
	dsn := strings.Join([]string{config.ConfigInfo.Mysql.Username, ":",
		config.ConfigInfo.Mysql.Password, "@tcp(", config.ConfigInfo.Mysql.Addr, ")/",
		config.ConfigInfo.Mysql.Database,
		"?charset=" + config.ConfigInfo.Mysql.Charset + "&parseTime=True&loc=Local"}, "")

	return dsn
}
