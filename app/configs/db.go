package configs

import (
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	maxRetries = 10
	retryDelay = 5 * time.Second
)

func OpenConnection(env ENV) (*gorm.DB, error) {
	dsn := buildDSN(env)

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		slog.Info("connecting to database", "driver", env.DBDriver, "attempt", i+1, "max", maxRetries)

		db, err := Open(env.DBDriver, dsn)
		if err == nil {
			sqlDB, pingErr := db.DB()
			if pingErr == nil {
				pingErr = sqlDB.Ping()
				if pingErr == nil {
					sqlDB.SetMaxOpenConns(25)
					sqlDB.SetMaxIdleConns(10)
					if env.DBDriver == "sqlite" {
						sqlDB.SetMaxOpenConns(1)
					}
					sqlDB.SetConnMaxLifetime(5 * time.Minute)
					slog.Info("database connection established", "driver", env.DBDriver)
					return db, nil
				}
			}
			lastErr = pingErr
			slog.Warn("failed to ping database", "error", pingErr, "retry_in", retryDelay)
		} else {
			lastErr = err
			slog.Warn("failed to open gorm connection", "error", err, "retry_in", retryDelay)
		}

		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("failed to connect to the database after %d retries: %w", maxRetries, lastErr)
}

// Open opens a gorm connection without retrying. Duplicate-key violations are
// translated to gorm.ErrDuplicatedKey for every dialect.
func Open(driver, dsn string) (*gorm.DB, error) {
	dialector, err := buildDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql", "":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: mysql, postgres, sqlite, sqlserver)", driver)
	}
}

func buildDSN(env ENV) string {
	if env.DBDSN != "" {
		return env.DBDSN
	}

	switch env.DBDriver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			env.DBHost, env.DBPort, env.DBUser, env.DBPassword, env.DBName)
	case "sqlite":
		return env.DBName
	case "sqlserver":
		return fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			env.DBUser, env.DBPassword, env.DBHost, env.DBPort, env.DBName)
	default:
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			env.DBUser,
			env.DBPassword,
			env.DBHost,
			env.DBPort,
			env.DBName,
		)
	}
}
