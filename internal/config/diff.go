package config

import (
	"reflect"
	"sort"
	"strings"

	logx "tgreport/pkg/logx"
)

// SummarizeChange returns a compact list of changed sections plus safe
// structured attrs for logging. Secrets (the bot token) are never included.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 4)
	attrs := make([]logx.Field, 0, 12)

	// Telegram (never log token)
	o, n := oldCfg.Telegram, newCfg.Telegram
	if o.APIBase != n.APIBase || o.Driver != n.Driver || o.ChatID != n.ChatID ||
		o.ThreadID != n.ThreadID || o.LogChatID != n.LogChatID ||
		strings.TrimSpace(o.Timeout) != strings.TrimSpace(n.Timeout) ||
		(strings.TrimSpace(o.Token) != "") != (strings.TrimSpace(n.Token) != "") {
		changed = append(changed, "telegram")
		attrs = append(attrs,
			logx.String("telegram.driver", strings.TrimSpace(n.Driver)),
			logx.Int64("telegram.chat_id", n.ChatID),
			logx.Bool("telegram.log_chat_set", n.LogChatID != 0),
		)
	}

	if oldCfg.Format != newCfg.Format {
		changed = append(changed, "format")
		attrs = append(attrs,
			logx.String("format.mode", newCfg.Format.Mode),
			logx.Bool("format.disable_preview", newCfg.Format.DisablePreview),
		)
	}

	if !reflect.DeepEqual(oldCfg.Logging, newCfg.Logging) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logx.level", newCfg.Logging.Level),
			logx.Bool("logx.console", newCfg.Logging.Console),
			logx.Bool("logx.file_enabled", newCfg.Logging.File.Enabled),
			logx.Bool("logx.telegram_enabled", newCfg.Logging.Telegram.Enabled),
		)
	}

	// Storage: nil means disabled.
	oS, nS := oldCfg.Storage, newCfg.Storage
	var oDriver, nDriver string
	if oS != nil {
		oDriver = strings.TrimSpace(oS.Driver)
	}
	if nS != nil {
		nDriver = strings.TrimSpace(nS.Driver)
	}
	if oDriver != nDriver || !reflect.DeepEqual(oS, nS) {
		changed = append(changed, "storage")
		attrs = append(attrs, logx.String("storage.driver", nDriver))
	}

	sort.Strings(changed)
	return changed, attrs
}
