// Package pilot provides a business-development pilot tool: a checklist
// tracker, a browser over versioned market-study documents with substring
// search, and a conversational assistant layered on top of both.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, http/).
package pilot
