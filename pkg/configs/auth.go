package configs

import "github.com/spf13/viper"

// Role 请求方角色.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleUploader Role = "uploader"
	RoleAdmin    Role = "admin"
)

var roleRank = map[Role]int{RoleViewer: 0, RoleUploader: 1, RoleAdmin: 2}

// AtLeast 判断角色是否不低于 min，未知角色视为无权限.
func (r Role) AtLeast(minRole Role) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}

	return rank >= roleRank[minRole]
}

// AuthConfig 控制统一身份认证（优先支持 oauth2-proxy 注入的请求头）。
// 认证只负责识别请求方用户名，上传的归属校验由服务层完成。
type AuthConfig struct {
	Enabled       bool     `mapstructure:"enabled"`         // 开启认证校验
	SkipPaths     []string `mapstructure:"skip_paths"`      // 跳过认证的路径前缀（如 /metrics、/api/health）
	DevAllowQuery bool     `mapstructure:"dev_allow_query"` // 开发模式允许用 ?user= 便于本地调试
	RoleHeader    string   `mapstructure:"role_header"`     // 携带角色的请求头
	DefaultRole   Role     `mapstructure:"default_role"     rule:"oneof=viewer uploader admin"`
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.dev_allow_query", false)
	v.SetDefault("auth.role_header", "X-Role")
	v.SetDefault("auth.default_role", RoleUploader)
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/api/health",
		"/api/posts",
		"/swagger",
		DefaultMediaRoute,
	})
}
