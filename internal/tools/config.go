package tools

import (
	"errors"
	"io/fs"
	"log/slog"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zenv"
	"github.com/joho/godotenv"

	"github.com/CLangCodes/Excel-Helper/internal/excel"
	"github.com/CLangCodes/Excel-Helper/internal/ooxml"
)

type EnvConfig struct {
	EXCEL_HELPER_BACKEND          excel.Backend
	EXCEL_HELPER_TEXT_STORAGE     ooxml.TextStorage
	EXCEL_HELPER_READ_CELLS_LIMIT int
	EXCEL_HELPER_LOG_LEVEL        string
}

var configSchema = z.Struct(z.Shape{
	"EXCEL_HELPER_BACKEND": z.StringLike[excel.Backend]().
		OneOf([]excel.Backend{excel.BackendAuto, excel.BackendOpenXML, excel.BackendExcelize, excel.BackendOLE}).
		Default(excel.BackendAuto),
	"EXCEL_HELPER_TEXT_STORAGE": z.StringLike[ooxml.TextStorage]().
		OneOf([]ooxml.TextStorage{ooxml.StorageShared, ooxml.StorageInline}).
		Default(ooxml.StorageShared),
	"EXCEL_HELPER_READ_CELLS_LIMIT": z.Int().GT(0).Default(4000),
	"EXCEL_HELPER_LOG_LEVEL":        z.String().OneOf([]string{"debug", "info", "warn", "error"}).Default("info"),
})

// LoadConfig reads the configuration from the environment. Variables in a
// .env file in the working directory fill in those not already set.
func LoadConfig() (EnvConfig, z.ZogIssueMap) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}
	config := EnvConfig{}
	issues := configSchema.Parse(zenv.NewDataProvider(), &config)
	return config, issues
}

// ExcelOptions turns the configuration into backend options.
func (c EnvConfig) ExcelOptions() excel.Options {
	return excel.Options{
		Backend:     c.EXCEL_HELPER_BACKEND,
		TextStorage: c.EXCEL_HELPER_TEXT_STORAGE,
	}
}

// LogLevel returns the slog level named by EXCEL_HELPER_LOG_LEVEL.
func (c EnvConfig) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.EXCEL_HELPER_LOG_LEVEL)); err != nil {
		return slog.LevelInfo
	}
	return level
}
