// Package session keeps the live 2048 games of the server.
//
// Manager stores sessions in memory behind a RWMutex and hands out
// 4-character hex IDs drawn from lukechampine.com/frand. Lookups are
// case-insensitive. Callers may also pick their own IDs (letters, digits,
// '-' and '_', up to 64 characters).
//
// With a SessionPersistence attached, every session is written as a JSON
// snapshot (grid, score, moves, config) whenever it changes and restored by
// LoadPersistedSessions on start-up. Move history is not kept.
//
// Usage:
//
//	fp, _ := session.NewFilePersistence("sessions", configManager)
//	manager := session.NewManagerWithPersistence(fp)
//	_ = manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", config)
//	sess, err = manager.Get(sess.ID)
//
//	// periodic housekeeping
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
