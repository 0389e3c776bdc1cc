package noteease_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aretw0/noteease"
)

// Example_basic creates a note, writes it to disk and reads it back.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "noteease-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	store, err := noteease.New(ctx, tmpDir)
	if err != nil {
		log.Fatal(err)
	}

	now := time.Date(2025, time.March, 4, 15, 30, 0, 0, time.UTC)
	store.Create(noteease.NewNote("Groceries", "<p>milk</p>", now))
	if err := store.Close(ctx); err != nil {
		log.Fatal(err)
	}

	reopened, err := noteease.New(ctx, tmpDir)
	if err != nil {
		log.Fatal(err)
	}
	defer reopened.Close(ctx)

	for _, n := range reopened.List() {
		fmt.Printf("%s: %s (%s)\n", n.ID, n.DisplayTitle(), n.Date)
	}
	// Output:
	// 1741102200000: Groceries (March 4, 2025)
}

// ExampleShouldCreate shows the blank-draft policy.
func ExampleShouldCreate() {
	fmt.Println(noteease.ShouldCreate("", ""))
	fmt.Println(noteease.ShouldCreate("", "<p>body only</p>"))
	// Output:
	// false
	// true
}

// ExampleNew_memory uses the in-memory backend and the change feed.
func ExampleNew_memory() {
	ctx := context.Background()
	store, err := noteease.New(ctx, "", noteease.WithAdapter("memory"))
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close(ctx)

	events, err := store.Subscribe(ctx)
	if err != nil {
		log.Fatal(err)
	}

	store.Create(noteease.Note{ID: "1", Title: "Groceries"})
	store.Update(noteease.Note{ID: "1", Title: "Weekly groceries"})
	store.Delete("1")

	for i := 0; i < 3; i++ {
		fmt.Println((<-events).String())
	}
	// Output:
	// CREATE 1
	// UPDATE 1
	// DELETE 1
}
