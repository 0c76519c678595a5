// Package main 启动 uploadvault.
package main

import (
	"fmt"
	"os"

	"github.com/yeisme/uploadvault/pkg/cmd"
)

//	@title			UploadVault API
//	@version		0.1.0
//	@description	UploadVault 为帖子提供可断点续传的分片上传：创建上传、按 Content-Range 写入分片、发布与撤下，并定期清理过期上传。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	yeisme
//	@contact.email	yefun2004@gmail.com

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
