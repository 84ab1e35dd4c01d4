package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/ledgerbook/internal/common"
	"github.com/Veraticus/ledgerbook/internal/model"
)

func TestSQLiteStorage_CreateContainer(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		input   string
	}{
		{name: "new container", input: "Business"},
		{name: "duplicate name", input: model.DefaultContainerName, wantErr: common.ErrDuplicateEntry},
		{name: "empty name", input: "  ", wantErr: common.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, cleanup := createTestStorage(t)
			defer cleanup()

			c, err := store.CreateContainer(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateContainer() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateContainer() error = %v", err)
			}
			if c.Name != tt.input || c.IsDefault || c.ID == 0 {
				t.Errorf("CreateContainer() = %+v", c)
			}
		})
	}
}

func TestSQLiteStorage_ListContainersDefaultFirst(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for _, name := range []string{"Business", "Side Project"} {
		if _, err := store.CreateContainer(ctx, name); err != nil {
			t.Fatalf("CreateContainer(%q) error = %v", name, err)
		}
	}

	containers, err := store.ListContainers(ctx)
	if err != nil {
		t.Fatalf("ListContainers() error = %v", err)
	}
	want := []string{model.DefaultContainerName, "Business", "Side Project"}
	if len(containers) != len(want) {
		t.Fatalf("got %d containers, want %d", len(containers), len(want))
	}
	for i, name := range want {
		if containers[i].Name != name {
			t.Errorf("containers[%d] = %q, want %q", i, containers[i].Name, name)
		}
	}
}

func TestSQLiteStorage_RenameContainer(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	c, err := store.CreateContainer(ctx, "Business")
	if err != nil {
		t.Fatalf("CreateContainer() error = %v", err)
	}

	if err := store.RenameContainer(ctx, c.ID, "Consulting"); err != nil {
		t.Fatalf("RenameContainer() error = %v", err)
	}
	got, err := store.GetContainerByName(ctx, "Consulting")
	if err != nil {
		t.Fatalf("GetContainerByName() error = %v", err)
	}
	if got.ID != c.ID {
		t.Errorf("renamed container id = %d, want %d", got.ID, c.ID)
	}

	if err := store.RenameContainer(ctx, c.ID, model.DefaultContainerName); !errors.Is(err, common.ErrDuplicateEntry) {
		t.Errorf("RenameContainer() to taken name error = %v, want ErrDuplicateEntry", err)
	}
	if err := store.RenameContainer(ctx, 999, "Nowhere"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("RenameContainer() missing id error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStorage_DeleteDefaultContainerIsProtected(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	id := defaultContainerID(t, store)
	err := store.DeleteContainer(ctx, id)
	if !errors.Is(err, common.ErrProtectedEntity) {
		t.Fatalf("DeleteContainer(default) error = %v, want ErrProtectedEntity", err)
	}

	if _, err := store.GetContainer(ctx, id); err != nil {
		t.Errorf("default container should still exist: %v", err)
	}
}

func TestSQLiteStorage_DeleteContainer(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	empty, err := store.CreateContainer(ctx, "Empty")
	if err != nil {
		t.Fatalf("CreateContainer() error = %v", err)
	}
	if err := store.DeleteContainer(ctx, empty.ID); err != nil {
		t.Fatalf("DeleteContainer(empty) error = %v", err)
	}
	containers, err := store.ListContainers(ctx)
	if err != nil {
		t.Fatalf("ListContainers() error = %v", err)
	}
	for _, c := range containers {
		if c.ID == empty.ID {
			t.Errorf("deleted container %d still listed", empty.ID)
		}
	}

	// A populated container takes its accounts and transactions with it.
	biz, err := store.CreateContainer(ctx, "Business")
	if err != nil {
		t.Fatalf("CreateContainer() error = %v", err)
	}
	checking := createTestAccount(t, store, biz.ID, "Checking", model.AccountTypeAsset, 1000)
	savings := createTestAccount(t, store, biz.ID, "Savings", model.AccountTypeAsset, 0)
	importOn(t, store, model.Transaction{ContainerID: biz.ID, AccountID: checking.ID, Amount: -500}, "2024-03-01")
	if _, err := store.CreateTransfer(ctx, model.TransferRequest{
		ContainerID: biz.ID, FromAccountID: checking.ID, ToAccountID: savings.ID, Amount: 200,
	}); err != nil {
		t.Fatalf("CreateTransfer() error = %v", err)
	}

	if err := store.DeleteContainer(ctx, biz.ID); err != nil {
		t.Fatalf("DeleteContainer() error = %v", err)
	}

	for _, table := range []string{"transactions", "accounts"} {
		var count int
		if err := store.db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE container_id = ?", biz.ID).Scan(&count); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("%d %s rows left for deleted container", count, table)
		}
	}

	if err := store.DeleteContainer(ctx, biz.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("second DeleteContainer() error = %v, want ErrNotFound", err)
	}
}
