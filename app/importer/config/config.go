package config

type Config struct {
	// 基础配置
	IsProd bool

	// 与 Server 通信配置
	ServerEndpoint string
	Username       string
	Password       string

	// 待导入的 CSV 文件
	CSVPath string
}
