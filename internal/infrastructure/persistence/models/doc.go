// Package models contains GORM persistence models for the connector tables.
// These models are separate from the warehouse wire types so the domain
// layer stays free of ORM concerns.
//
// Structure:
// - responses.go: stored provider responses per article and order
// - inventory.go: the last warehouse stock report
// - logs.go: the connector error log
// - snippets.go: the shop's localized message snippets (read only)
// - staged.go: shop records exported for the cron passes
// - shop.go: the shop article details the inventory sync touches
package models
