package config

import (
	"fmt"
	"os"
)

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(pngctlTemplate), 0o600)
}

const pngctlTemplate = `[fetch]
timeout = "30s"
user_agent = "pngctl/0.1"
max_bytes = 67108864

[output]
overwrite_input = true
file_mode = "0644"

[server]
addr = ":9300"
cors_origins = ["http://localhost:3000"]
max_body_bytes = 16777216
# auth_token = "change-me"

[log]
level = "info"
`
