// -----------------------------------------------------------------------------
// Config Package
// -----------------------------------------------------------------------------
// Bu dosya, fluentsql'in merkezi konfigürasyon yönetimini sağlar. Laravel'deki
// .env + config/database.php ikilisine benzer şekilde, ortam değişkenlerini
// okuyarak varsayılan bağlantı, redis ve query cache ayarlarını yönetir.
//
// Birden fazla isimli bağlantı DB_CONNECTIONS_FILE ile gösterilen YAML
// dosyasından okunur. Dosya verilmezse DB_* değişkenlerinden tek bir
// "default" bağlantı üretilir.
//
// Eksik ortam değişkenleri olduğunda log üzerinden uyarı verir ve default
// değerleri kullanır.
// -----------------------------------------------------------------------------

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/biyonik/fluent-query/pkg/database"
)

// Config, uygulamanın merkezi yapılandırma nesnesidir.
//
// Nested struct yapısı kullanılarak ilgili ayarlar gruplandırılmıştır:
//   - App: Uygulama genel ayarları
//   - DB: Varsayılan bağlantı ve bağlantı dosyası
//   - Redis: Redis bağlantı ayarları
//   - QueryCache: Remember(ttl) sorgularının cache ayarları
type Config struct {
	App struct {
		Name string // Uygulama adı
		Env  string // Ortam (development, production, test)
	}

	DB struct {
		Connection      string        // Varsayılan bağlantı adı
		ConnectionsFile string        // İsimli bağlantıların YAML dosyası
		Dialect         string        // mysql, postgres, sqlite
		Host            string        // Veritabanı host
		Port            int           // Veritabanı port
		Database        string        // Veritabanı adı (sqlite için dosya yolu)
		User            string        // Kullanıcı adı
		Password        string        // Şifre
		Charset         string        // MySQL charset
		MaxOpenConns    int           // Maksimum açık bağlantı sayısı
		MaxIdleConns    int           // Maksimum boşta bekleyen bağlantı sayısı
		ConnMaxLifetime time.Duration // Bağlantı maksimum ömrü
		RateLimit       float64       // Saniyedeki statement limiti (0 = sınırsız)
		Debug           bool          // Statement'ları logla
	}

	Redis struct {
		Host     string // Redis host adresi
		Port     int    // Redis port
		Password string // Redis şifresi (opsiyonel)
		DB       int    // Database numarası (0-15)
	}

	QueryCache struct {
		Driver string        // memory, redis, none
		Prefix string        // Cache key prefix (namespace)
		TTL    time.Duration // Varsayılan Remember süresi
	}
}

// Load, ortam değişkenlerini okuyarak Config nesnesini döndürür.
//
// Örnek kullanım:
//
//	cfg := config.Load()
//	conns, err := cfg.Connections()
func Load() *Config {
	cfg := &Config{}

	// Helper function: Ortam değişkenini oku, yoksa default kullan
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		log.Printf("⚠️  Uyarı: %s ortam değişkeni bulunamadı, varsayılan (%s) kullanılıyor.", key, defaultValue)
		return defaultValue
	}

	// Helper function: Integer ortam değişkeni
	getEnvAsInt := func(key string, defaultValue int) int {
		valueStr := os.Getenv(key)
		if valueStr == "" {
			log.Printf("⚠️  Uyarı: %s ortam değişkeni bulunamadı, varsayılan (%d) kullanılıyor.", key, defaultValue)
			return defaultValue
		}

		value, err := strconv.Atoi(valueStr)
		if err != nil {
			log.Printf("⚠️  Uyarı: %s için geçersiz değer: %s, varsayılan (%d) kullanılıyor.", key, valueStr, defaultValue)
			return defaultValue
		}

		return value
	}

	// Helper function: Float ortam değişkeni
	getEnvAsFloat := func(key string, defaultValue float64) float64 {
		valueStr := os.Getenv(key)
		if valueStr == "" {
			return defaultValue
		}

		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			log.Printf("⚠️  Uyarı: %s için geçersiz değer: %s, varsayılan (%g) kullanılıyor.", key, valueStr, defaultValue)
			return defaultValue
		}

		return value
	}

	// Helper function: Boolean ortam değişkeni
	getEnvAsBool := func(key string, defaultValue bool) bool {
		valueStr := os.Getenv(key)
		if valueStr == "" {
			return defaultValue
		}

		value, err := strconv.ParseBool(valueStr)
		if err != nil {
			log.Printf("⚠️  Uyarı: %s için geçersiz boolean değer: %s, varsayılan (%t) kullanılıyor.", key, valueStr, defaultValue)
			return defaultValue
		}

		return value
	}

	// Helper function: Duration ortam değişkeni (saniye cinsinden)
	getEnvAsDuration := func(key string, defaultSeconds int) time.Duration {
		seconds := getEnvAsInt(key, defaultSeconds)
		return time.Duration(seconds) * time.Second
	}

	// Application Configuration
	cfg.App.Name = getEnv("APP_NAME", "fluentsql")
	cfg.App.Env = getEnv("APP_ENV", "development")

	// Database Configuration
	cfg.DB.Connection = getEnv("DB_CONNECTION", database.DefaultConnectionName)
	cfg.DB.ConnectionsFile = getEnv("DB_CONNECTIONS_FILE", "")
	cfg.DB.Dialect = getEnv("DB_DIALECT", "mysql")
	cfg.DB.Host = getEnv("DB_HOST", "127.0.0.1")
	cfg.DB.Port = getEnvAsInt("DB_PORT", 3306)
	cfg.DB.Database = getEnv("DB_DATABASE", "fluentsql")
	cfg.DB.User = getEnv("DB_USER", "root")
	cfg.DB.Password = getEnv("DB_PASSWORD", "")
	cfg.DB.Charset = getEnv("DB_CHARSET", "utf8mb4")
	cfg.DB.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DB.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", 25)
	cfg.DB.ConnMaxLifetime = getEnvAsDuration("DB_CONN_MAX_LIFETIME", 300) // 5 dakika
	cfg.DB.RateLimit = getEnvAsFloat("DB_RATE_LIMIT", 0)
	cfg.DB.Debug = getEnvAsBool("DB_DEBUG", false)

	// Redis Configuration
	cfg.Redis.Host = getEnv("REDIS_HOST", "127.0.0.1")
	cfg.Redis.Port = getEnvAsInt("REDIS_PORT", 6379)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)

	// Query Cache Configuration
	cfg.QueryCache.Driver = getEnv("QUERY_CACHE_DRIVER", "memory") // memory, redis, none
	cfg.QueryCache.Prefix = getEnv("QUERY_CACHE_PREFIX", "fluentsql:")
	cfg.QueryCache.TTL = getEnvAsDuration("QUERY_CACHE_TTL", 60)

	// Validation
	if err := cfg.Validate(); err != nil {
		log.Printf("❌ Config validation hatası: %v", err)
	}

	return cfg
}

// Validate, config değerlerinin geçerliliğini kontrol eder.
//
// - Lehçe ve cache driver geçerliliği
// - Production'da boş veritabanı şifresi ve debug log uyarıları
func (c *Config) Validate() error {
	if c.DB.ConnectionsFile == "" {
		if _, ok := database.GrammarFor(c.DB.Dialect); !ok {
			return fmt.Errorf("geçersiz DB_DIALECT: %s (mysql, postgres veya sqlite olmalı)", c.DB.Dialect)
		}
	}

	validDrivers := map[string]bool{
		"redis":  true,
		"memory": true,
		"none":   true,
	}
	if !validDrivers[c.QueryCache.Driver] {
		return fmt.Errorf("geçersiz QUERY_CACHE_DRIVER: %s (redis, memory veya none olmalı)", c.QueryCache.Driver)
	}

	if c.DB.RateLimit < 0 {
		return fmt.Errorf("DB_RATE_LIMIT negatif olamaz: %g", c.DB.RateLimit)
	}

	// Production uyarıları
	if c.IsProduction() {
		if c.DB.Password == "" && c.DB.Dialect != "sqlite" {
			log.Println("⚠️  UYARI: Production'da DB_PASSWORD boş!")
		}
		if c.DB.Debug {
			log.Println("⚠️  UYARI: DB_DEBUG production'da bind değerlerini loglar!")
		}
	}

	return nil
}

// IsProduction, uygulamanın production ortamında çalışıp çalışmadığını kontrol eder.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsDevelopment, uygulamanın development ortamında çalışıp çalışmadığını kontrol eder.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsTest, uygulamanın test ortamında çalışıp çalışmadığını kontrol eder.
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}

// DefaultConnection, DB_* değişkenlerinden tek bir bağlantı yapılandırması üretir.
func (c *Config) DefaultConnection() database.ConnectionConfig {
	return database.ConnectionConfig{
		Dialect:         c.DB.Dialect,
		Host:            c.DB.Host,
		Port:            c.DB.Port,
		Database:        c.DB.Database,
		User:            c.DB.User,
		Password:        c.DB.Password,
		Charset:         c.DB.Charset,
		MaxOpenConns:    c.DB.MaxOpenConns,
		MaxIdleConns:    c.DB.MaxIdleConns,
		ConnMaxLifetime: c.DB.ConnMaxLifetime,
		RateLimit:       c.DB.RateLimit,
		Debug:           c.DB.Debug,
	}
}

// Connections, registry'ye yüklenecek isimli bağlantıları döndürür.
//
// DB_CONNECTIONS_FILE verilmişse YAML dosyası okunur; verilmemişse DB_*
// değişkenlerinden DB_CONNECTION adıyla tek bir bağlantı döner.
func (c *Config) Connections() (map[string]database.ConnectionConfig, error) {
	if c.DB.ConnectionsFile != "" {
		return LoadConnections(c.DB.ConnectionsFile)
	}
	return map[string]database.ConnectionConfig{
		c.DB.Connection: c.DefaultConnection(),
	}, nil
}

// connectionsFile, YAML bağlantı dosyasının kök yapısıdır.
//
//	connections:
//	  default:
//	    dialect: mysql
//	    host: 127.0.0.1
//	  reporting:
//	    dialect: postgres
//	    options:
//	      driver: pgx
type connectionsFile struct {
	Connections map[string]database.ConnectionConfig `yaml:"connections"`
}

// LoadConnections, YAML dosyasından isimli bağlantı yapılandırmalarını okur.
func LoadConnections(path string) (map[string]database.ConnectionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bağlantı dosyası okunamadı: %w", err)
	}
	return ParseConnections(data)
}

// ParseConnections, YAML içeriğinden bağlantı yapılandırmalarını çözer.
// Lehçesi tanınmayan bağlantılar hata döndürür.
func ParseConnections(data []byte) (map[string]database.ConnectionConfig, error) {
	var file connectionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("bağlantı dosyası çözümlenemedi: %w", err)
	}
	if len(file.Connections) == 0 {
		return nil, fmt.Errorf("bağlantı dosyasında 'connections' bulunamadı")
	}

	for name, conn := range file.Connections {
		if _, ok := database.GrammarFor(conn.Dialect); !ok {
			return nil, fmt.Errorf("bağlantı %q: geçersiz dialect %q", name, conn.Dialect)
		}
	}
	return file.Connections, nil
}
