package mysql

import (
	"testing"

	"mentor_sync/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.MysqlConfig{Host: "db", Port: 3306, User: "u", Password: "p", DatabaseName: "mirror"})
	assert.Equal(t, "u:p@tcp(db:3306)/mirror?charset=utf8mb4&parseTime=True&loc=Local", dsn)
}
