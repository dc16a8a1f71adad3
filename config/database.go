package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	MongoURI        string
	MongoDatabase   string
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("db_driver", DriverSQLite)
	v.SetDefault("db_dsn", "file:noteshelf.db?_foreign_keys=on")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", 30*time.Minute)
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_db", "noteshelf")
	v.SetDefault("mongo_max_pool_size", 100)
	v.SetDefault("mongo_min_pool_size", 10)
	v.SetDefault("mongo_max_conn_idle_time", 60*time.Second)
}

func loadDatabaseConfig(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
		Driver:          v.GetString("db_driver"),
		DSN:             v.GetString("db_dsn"),
		MaxOpenConns:    v.GetInt("db_max_open_conns"),
		MaxIdleConns:    v.GetInt("db_max_idle_conns"),
		ConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
		MongoURI:        v.GetString("mongo_uri"),
		MongoDatabase:   v.GetString("mongo_db"),
		MaxPoolSize:     v.GetUint64("mongo_max_pool_size"),
		MinPoolSize:     v.GetUint64("mongo_min_pool_size"),
		MaxConnIdleTime: v.GetDuration("mongo_max_conn_idle_time"),
	}
}

func (c DatabaseConfig) validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
		if c.DSN == "" {
			return fmt.Errorf("DB_DSN is required for driver %s", c.Driver)
		}
	case DriverMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return fmt.Errorf("MONGO_URI and MONGO_DB are required for driver mongo")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Driver)
	}
	return nil
}
