package api

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// clientIPHeaders 依次检查的代理头
var clientIPHeaders = []string{"X-Forwarded-For", "Proxy-Client-IP", "WL-Proxy-Client-IP"}

// ClientIP 解析访问者地址
// 依次检查代理头,空值或 unknown 视为缺失;X-Forwarded-For 取第一个地址;最后使用对端地址
func ClientIP(c *gin.Context) string {
	for _, header := range clientIPHeaders {
		value := strings.TrimSpace(c.GetHeader(header))
		if header == "X-Forwarded-For" {
			value = strings.TrimSpace(strings.SplitN(value, ",", 2)[0])
		}
		if value != "" && !strings.EqualFold(value, "unknown") {
			return value
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(c.Request.RemoteAddr))
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}
