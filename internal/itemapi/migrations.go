package itemapi

import "embed"

// migrationsFS はitemsテーブルのスキーマ定義を含む埋め込みファイルシステム。
//
//go:embed migrations/*.up.sql
var migrationsFS embed.FS
