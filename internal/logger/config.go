// internal/logger/config.go
package logger

// Config задает консольный вывод и ротацию файла логов
type Config struct {
	LogFile    string // пусто: только консоль
	MaxSize    int    // MB до ротации
	MaxAge     int    // дни хранения
	MaxBackups int
	Compress   bool

	// Development включает debug уровень
	Development bool
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		MaxSize:    50,
		MaxAge:     14,
		MaxBackups: 5,
		Compress:   true,
	}
}

// ForCLI returns the defaults with the log file and level taken from the
// application config.
func ForCLI(logFile string, debug bool) *Config {
	cfg := DefaultConfig()
	cfg.LogFile = logFile
	cfg.Development = debug
	return cfg
}
