// Package scrapetmpl trains and applies reusable extraction templates for
// news-article pages. A template maps schema fields to CSS selectors; it is
// bootstrapped from a sample page by an LLM or by structural heuristics,
// validated against the page, persisted per domain, and scored on every use.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, rod/).
package scrapetmpl
