package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

var DefaultEnvConfig *EnvConfig

type EnvConfig struct {
	// logger config
	LogFilePath string
	LogLevel    string `validate:"oneof=trace debug info warn error fatal panic disabled"`

	// http config
	HTTPAddr       string `validate:"required,hostname_port"`
	MaxUploadBytes int64  `validate:"gt=0"`

	// workbook config
	AppName          string `validate:"required"`
	CSVEncoding      string
	ReaderConfigPath string `validate:"omitempty,file"`
}

// LoadEnvConfig reads the given .env files (".env" when none are named) and
// builds DefaultEnvConfig from TABXL_* variables. Missing .env files are
// not an error.
func LoadEnvConfig(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfg := &EnvConfig{
		LogFilePath:      getEnvString("TABXL_LOG_FILE_PATH", ""),
		LogLevel:         getEnvString("TABXL_LOG_LEVEL", "info"),
		HTTPAddr:         getEnvString("TABXL_HTTP_ADDR", ":8080"),
		MaxUploadBytes:   getEnvInt64("TABXL_MAX_UPLOAD_BYTES", 32<<20),
		AppName:          getEnvString("TABXL_APP_NAME", "tabxl"),
		CSVEncoding:      getEnvString("TABXL_CSV_ENCODING", ""),
		ReaderConfigPath: getEnvString("TABXL_READER_CONFIG", ""),
	}
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	DefaultEnvConfig = cfg
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}
