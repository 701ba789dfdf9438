// Package config はサーバーの設定を環境変数から構築する。
//
// 設定はプロセス起動時に一度だけ読み込まれ、明示的な構造体として
// 各コンポーネントへ渡される。グローバルな可変状態は持たない。
package config

import (
	"log"
	"os"
)

// Config はItem APIサーバーの設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string
	// JWTSecret はトークン署名用の共有シークレット。
	JWTSecret string
	// DatabasePath はSQLiteデータベースファイルのパス。
	DatabasePath string
	// AllowedOrigins はCORSで許可するオリジンの一覧。
	AllowedOrigins []string
}

// defaultJWTSecret は開発用のフォールバックシークレット。本番では必ず上書きすること。
const defaultJWTSecret = "dev-secret-key"

// Load は環境変数からConfigを構築する。
// JWT_SECRETが未設定の場合は開発用シークレットを使用し、警告を出力する。
func Load() *Config {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = defaultJWTSecret
		log.Printf("警告: JWT_SECRETが未設定のため開発用シークレットを使用します")
	}

	return &Config{
		Port:           getEnvOr("PORT", "3000"),
		JWTSecret:      jwtSecret,
		DatabasePath:   getEnvOr("DATABASE_PATH", "itemapi.db"),
		AllowedOrigins: []string{getEnvOr("FRONTEND_URL", "http://localhost:5173")},
	}
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
