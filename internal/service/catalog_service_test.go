package service

import (
	"errors"
	"testing"

	"mutuelle/internal/cache"
	"mutuelle/internal/repository"
)

func TestCatalogCRUD(t *testing.T) {
	db := newTestDB(t)
	catalog := NewCatalogService(repository.NewServiceRepository(db))

	svc, err := catalog.Create("Aide scolaire", "rentrée des classes", 200, true)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if svc.ID == "" {
		t.Fatal("Create() returned no ID")
	}

	got, err := catalog.Get(svc.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Aide scolaire" || got.MaxAmount != 200 {
		t.Errorf("Get() = %+v", got)
	}

	if _, err := catalog.Update(svc.ID, "Aide scolaire", "", 250, true); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _ = catalog.Get(svc.ID)
	if got.MaxAmount != 250 {
		t.Errorf("max amount = %v after update, want 250", got.MaxAmount)
	}

	if err := catalog.Delete(svc.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := catalog.Get(svc.ID); !errors.Is(err, ErrServiceNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrServiceNotFound", err)
	}
}

func TestCatalogCreateValidation(t *testing.T) {
	db := newTestDB(t)
	catalog := NewCatalogService(repository.NewServiceRepository(db))

	if _, err := catalog.Create("", "", 100, true); err == nil {
		t.Error("Create() with empty name should fail")
	}
	if _, err := catalog.Create("Aide", "", 0, true); err == nil {
		t.Error("Create() with zero ceiling should fail")
	}
}

func TestActiveServices(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewServiceRepository(db)
	catalog := NewCatalogService(repo)

	seedService(t, repo, "Active", 100, true)
	seedService(t, repo, "Retired", 100, false)

	active, err := catalog.ActiveServices()
	if err != nil {
		t.Fatalf("ActiveServices() error = %v", err)
	}
	if len(active) != 1 || active[0].Name != "Active" {
		t.Errorf("ActiveServices() = %v, want only the active entry", active)
	}

	// Deactivation shows up without a reload
	svc := active[0]
	if _, err := catalog.SetActive(svc.ID, false); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	active, _ = catalog.ActiveServices()
	if len(active) != 0 {
		t.Errorf("ActiveServices() = %v after deactivation, want none", active)
	}
}

func TestCatalogNotifiesSubscribers(t *testing.T) {
	db := newTestDB(t)
	catalog := NewCatalogService(repository.NewServiceRepository(db))
	if err := catalog.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	events, cancel := catalog.Subscribe()
	defer cancel()

	svc, err := catalog.Create("Aide", "", 100, true)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ev := <-events
	if ev.Type != cache.EventCreated || ev.ID != svc.ID {
		t.Errorf("event = %+v, want created %s", ev, svc.ID)
	}
}
