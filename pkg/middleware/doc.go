// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// ベアラートークン認証、パニックリカバリ、CORS設定、リクエストID付与など、
// ルーター全体に適用する横断的な処理を含む。
package middleware
