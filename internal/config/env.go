package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// FromEnv applies LEVELUP_* overrides on top of c.
// LEVELUP_DIFFICULTY swaps in a preset before the individual rule overrides run.
func FromEnv(c *Config) {
	if mode := strings.ToLower(os.Getenv("LEVELUP_DIFFICULTY")); mode != "" {
		switch mode {
		case "casual":
			c.Rules = Casual()
		case "hard":
			c.Rules = Hard()
		}
	}

	if v := os.Getenv("LEVELUP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LEVELUP_DATA_DIR"); v != "" {
		c.Server.DataDir = v
	}
	if v := os.Getenv("LEVELUP_STORAGE"); v != "" {
		c.Server.Storage = strings.ToLower(v)
	}
	if v := os.Getenv("LEVELUP_SQLITE_PATH"); v != "" {
		c.Server.SQLitePath = v
	}
	if v := os.Getenv("LEVELUP_COOKIE_NAME"); v != "" {
		c.Server.CookieName = v
	}
	if v := os.Getenv("LEVELUP_COOKIE_SAMESITE"); v != "" {
		c.Server.CookieSameSite = strings.ToLower(v)
	}
	if v, ok := getEnvBool("LEVELUP_COOKIE_SECURE"); ok {
		c.Server.CookieSecure = v
	}
	if val := getEnvInt("LEVELUP_SESSION_TTL_HOURS"); val > 0 {
		c.Server.SessionTTL = time.Duration(val) * time.Hour
	}

	if v := os.Getenv("LEVELUP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LEVELUP_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}

	if v := os.Getenv("LEVELUP_ADMIN_USERNAME"); v != "" {
		c.Admin.Username = v
	}
	if v := os.Getenv("LEVELUP_ADMIN_PASSWORD"); v != "" {
		c.Admin.Password = v
	}

	if v := os.Getenv("LEVELUP_GEMINI_API_KEY"); v != "" {
		c.Suggest.APIKey = v
	}
	if v := os.Getenv("LEVELUP_GEMINI_MODEL"); v != "" {
		c.Suggest.Model = v
	}

	if val, ok := lookupEnvInt("LEVELUP_STARTING_GOLD"); ok {
		c.Rules.StartingGold = val
	}
	if val, ok := lookupEnvInt("LEVELUP_EASY_REWARD"); ok {
		c.Rules.EasyReward = val
	}
	if val, ok := lookupEnvInt("LEVELUP_HARD_REWARD"); ok {
		c.Rules.HardReward = val
	}
	if val := getEnvInt("LEVELUP_DEADLINE_HOURS"); val > 0 {
		c.Rules.DeadlineWindow = time.Duration(val) * time.Hour
	}
	if val := getEnvInt("LEVELUP_PENALTY_HOURS"); val > 0 {
		c.Rules.PenaltyWindow = time.Duration(val) * time.Hour
	}
	if v, ok := getEnvBool("LEVELUP_REVERSE_ON_DELETE"); ok {
		c.Rules.ReverseOnDelete = v
	}
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

// lookupEnvInt reports whether key holds an integer, so a set "0" is kept.
func lookupEnvInt(key string) (int, bool) {
	num, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0, false
	}
	return num, true
}

func getEnvBool(key string) (bool, bool) {
	val := os.Getenv(key)
	if val == "" {
		return false, false
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, false
	}
	return b, true
}
