package cirrus_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aretw0/cirrus"
	"github.com/aretw0/cirrus/pkg/adapters/memory"
	"github.com/aretw0/cirrus/pkg/core"
)

// Example_offline shows that notes can be written without any remote.
func Example_offline() {
	svc, err := cirrus.New("")
	if err != nil {
		log.Fatal(err)
	}

	n := svc.Create("Groceries", "Milk, eggs")
	if _, err := svc.Update(n.ID, core.Patch{Content: core.String("Milk, eggs, bread")}); err != nil {
		log.Fatal(err)
	}

	got, _ := svc.Get(n.ID)
	fmt.Println(got.Title+":", got.Content)
	fmt.Println("synced:", got.Synced)
	// Output:
	// Groceries: Milk, eggs, bread
	// synced: false
}

// Example_sync shows a full sync against an in-process remote: the newer
// remote copy wins the conflict and remote-only notes are adopted.
func Example_sync() {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	remote := memory.NewRemote(
		core.Note{ID: "a", Title: "New", CreatedAt: t0, UpdatedAt: t0.Add(time.Hour)},
		core.Note{ID: "b", Title: "From elsewhere", CreatedAt: t0, UpdatedAt: t0},
	)

	// A stale local copy of "a", as if restored from an old snapshot.
	persisted := &fixedPersister{notes: []core.Note{
		{ID: "a", Title: "Old", CreatedAt: t0, UpdatedAt: t0},
	}}

	ctx := context.Background()
	svc, err := cirrus.New("",
		cirrus.WithRemote(remote),
		cirrus.WithPersister(persisted),
		cirrus.WithSyncInterval(time.Hour),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close(ctx)

	fmt.Println(svc.Connect(ctx))
	for _, n := range svc.List() {
		fmt.Println(n.ID, n.Title, n.Synced)
	}
	// Output:
	// connected
	// a New true
	// b From elsewhere true
}

type fixedPersister struct {
	notes []core.Note
}

func (p *fixedPersister) Load(context.Context) ([]core.Note, error) { return p.notes, nil }
func (p *fixedPersister) Save(context.Context, []core.Note) error    { return nil }
