// Package itemapi はアイテムリソースのCRUDを提供するHTTPサービスを実装する。
//
// ベアラートークン認証で保護されたアイテムの作成・一覧・取得・更新・削除と、
// トークンを発行するスタブのregister/loginエンドポイントを公開する。
// 永続化はSQLite上のitemsテーブル1つで、スキーマは起動時に適用される。
package itemapi
