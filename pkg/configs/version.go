package configs

// AppName 应用名称，用于日志、追踪与 S3 客户端标识.
const AppName = "uploadvault"

// AppVersion 应用版本，构建时可通过 -ldflags 覆盖.
var AppVersion = "0.1.0"
