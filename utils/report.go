package utils

import (
	"log"

	"github.com/rollbar/rollbar-go"
)

var reportingEnabled bool

// InitErrorReporting bật Rollbar khi có token; không có token thì chỉ ghi log.
func InitErrorReporting(token, env, codeVersion string) {
	rollbar.SetToken(token)
	rollbar.SetEnvironment(env)
	rollbar.SetCodeVersion(codeVersion)
	reportingEnabled = token != ""
	rollbar.SetEnabled(reportingEnabled)
}

// ReportError ghi log lỗi nội bộ và gửi lên Rollbar (nếu đã bật).
func ReportError(msg string, err error, extras map[string]interface{}) {
	log.Printf("%s: %+v", msg, err)
	if !reportingEnabled {
		return
	}
	if extras == nil {
		extras = map[string]interface{}{}
	}
	extras["message"] = msg
	rollbar.Error(err, extras)
}

// CloseErrorReporting đợi gửi hết các lỗi còn trong hàng đợi.
func CloseErrorReporting() {
	if reportingEnabled {
		rollbar.Close()
	}
}
