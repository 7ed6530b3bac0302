// Package cirrus is the Composition Root for Cirrus, an offline-first note
// store with a last-write-wins sync engine.
//
// It connects the core domain (store, merge, sync coordinator) with the
// infrastructure adapters (REST remote, in-memory remote, snapshot files)
// using the Hexagonal Architecture pattern.
//
// Every edit is applied locally first and is visible at once. When a remote
// is configured and the service is connected, edits are pushed in the
// background and a full sync (fetch all, merge, replace) runs on connect and
// then periodically. Conflicts are resolved per note: the copy with the later
// UpdatedAt wins, ties favour the local copy.
//
// Usage:
//
//	svc, err := cirrus.New("https://example.com/notes",
//		cirrus.WithAPIKey(key),
//		cirrus.WithSnapshot(".cirrus/notes.json"),
//		cirrus.WithLogger(logger),
//	)
//	defer svc.Close(ctx)
//
//	svc.Connect(ctx)
//	note := svc.Create("Groceries", "Milk, eggs")
package cirrus
