package gormplugin

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"katydid-common-validation/pkg/rule"
	"katydid-common-validation/pkg/validator"
)

// Account 带注解的模型
type Account struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuditLog 没有注解的模型
type AuditLog struct {
	ID     uint
	Action string
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	r := validator.NewRegistry()
	require.NoError(t, validator.Annotate[Account](r, "username", rule.String().Alphanum().Min(3).Max(30).Required()))
	require.NoError(t, validator.Annotate[Account](r, "email", rule.String().Email()))
	v := validator.New(rule.NewEngine(), validator.WithRegistry(r))

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := Open(Config{Driver: DriverSQLite, DSN: dsn}, New(v), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Account{}, &AuditLog{}))
	return db
}

// ============================================================================
// 1. 写入前验证
// ============================================================================

func TestPlugin_Create(t *testing.T) {
	db := openTestDB(t)

	tests := []struct {
		name    string
		account *Account
		wantErr string
	}{
		{
			name:    "有效的模型",
			account: &Account{Username: "root", Email: "root@example.com"},
		},
		{
			name:    "用户名为空",
			account: &Account{Username: "", Email: "root@example.com"},
			wantErr: `child "username" fails because ["username" is not allowed to be empty]`,
		},
		{
			name:    "邮箱格式错误",
			account: &Account{Username: "admin", Email: "admin@@example.com"},
			wantErr: `child "email" fails because ["email" must be a valid email]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.Create(tt.account).Error
			if tt.wantErr == "" {
				assert.NoError(t, err)
				assert.NotZero(t, tt.account.ID)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidModel)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	var count int64
	require.NoError(t, db.Model(&Account{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "rejected models must not be written")
}

func TestPlugin_CreateBatch(t *testing.T) {
	db := openTestDB(t)

	accounts := []*Account{
		{Username: "alice", Email: "alice@example.com"},
		{Username: "b", Email: "b@example.com"},
	}
	err := db.Create(&accounts).Error
	assert.ErrorIs(t, err, ErrInvalidModel)

	var count int64
	require.NoError(t, db.Model(&Account{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestPlugin_Update(t *testing.T) {
	db := openTestDB(t)

	account := &Account{Username: "root", Email: "root@example.com"}
	require.NoError(t, db.Create(account).Error)

	account.Email = "broken"
	err := db.Save(account).Error
	assert.ErrorIs(t, err, ErrInvalidModel)

	var stored Account
	require.NoError(t, db.First(&stored, account.ID).Error)
	assert.Equal(t, "root@example.com", stored.Email)

	t.Run("map 形式的更新不验证", func(t *testing.T) {
		err := db.Model(&Account{}).Where("id = ?", account.ID).Updates(map[string]any{"email": "changed"}).Error
		assert.NoError(t, err)
	})
}

func TestPlugin_UpdatesStruct(t *testing.T) {
	db := openTestDB(t)

	account := &Account{Username: "root", Email: "root@example.com"}
	require.NoError(t, db.Create(account).Error)

	t.Run("只验证写入的字段", func(t *testing.T) {
		require.NoError(t, db.Model(account).Updates(Account{Email: "new@example.com"}).Error)

		var stored Account
		require.NoError(t, db.First(&stored, account.ID).Error)
		assert.Equal(t, "new@example.com", stored.Email)
		assert.Equal(t, "root", stored.Username)
	})

	t.Run("写入的字段不合法", func(t *testing.T) {
		err := db.Model(account).Updates(Account{Email: "broken"}).Error
		assert.ErrorIs(t, err, ErrInvalidModel)
		assert.Contains(t, err.Error(), `child "email" fails because ["email" must be a valid email]`)
	})

	t.Run("按 Select 验证零值字段", func(t *testing.T) {
		err := db.Model(account).Select("Username").Updates(Account{}).Error
		assert.ErrorIs(t, err, ErrInvalidModel)
		assert.Contains(t, err.Error(), `"username" is not allowed to be empty`)
	})

	t.Run("Omit 的字段不验证", func(t *testing.T) {
		err := db.Model(account).Omit("email").Updates(Account{Username: "admin", Email: "broken"}).Error
		assert.NoError(t, err)
	})

	var stored Account
	require.NoError(t, db.First(&stored, account.ID).Error)
	assert.Equal(t, "admin", stored.Username)
	assert.Equal(t, "new@example.com", stored.Email)
}

func TestPlugin_SkipsModelsWithoutMetadata(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, db.Create(&AuditLog{Action: ""}).Error)
}

// ============================================================================
// 2. 数据库方言
// ============================================================================

func TestDialector(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{driver: "sqlite", want: "sqlite"},
		{driver: "SQLite3", want: "sqlite"},
		{driver: "mysql", want: mysql.Dialector{}.Name()},
		{driver: "postgresql", want: postgres.Dialector{}.Name()},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			dialector, err := Dialector(Config{Driver: tt.driver, DSN: "x"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, dialector.Name())
		})
	}

	_, err := Dialector(Config{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)

	_, err = Open(Config{Driver: "oracle"}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestPlugin_Name(t *testing.T) {
	assert.Equal(t, "katydid:validation", New(nil).Name())
}
