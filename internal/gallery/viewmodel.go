// Package gallery holds the client-side state of the photo gallery: the
// photo list, the photo open in the viewer and which modal is showing.
package gallery

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"sync"
	"time"

	"portfolio-api/internal/models"
)

// DefaultCloseDelay is how long Close keeps the selection around so the
// viewer can animate out.
const DefaultCloseDelay = 300 * time.Millisecond

type Modal int

const (
	ModalNone Modal = iota
	ModalViewing
	ModalAdding
)

func (m Modal) String() string {
	switch m {
	case ModalViewing:
		return "viewing"
	case ModalAdding:
		return "adding"
	default:
		return "none"
	}
}

// PhotoAPI is the part of the portfolio API the view model talks to.
type PhotoAPI interface {
	ListPhotos(ctx context.Context) ([]*models.Photo, error)
	DeletePhoto(ctx context.Context, id string) error
}

// Notifier surfaces an error notice to the user.
type Notifier func(message string)

type ViewModel struct {
	api        PhotoAPI
	notify     Notifier
	closeDelay time.Duration
	logger     *log.Logger

	mu       sync.Mutex
	photos   []*models.Photo
	selected *models.Photo
	modal    Modal

	// clearGen invalidates pending selection clears when the viewer reopens.
	clearGen   uint64
	clearTimer *time.Timer
}

type Option func(*ViewModel)

func WithCloseDelay(d time.Duration) Option {
	return func(vm *ViewModel) { vm.closeDelay = d }
}

func WithNotifier(n Notifier) Option {
	return func(vm *ViewModel) { vm.notify = n }
}

// WithInitialPhotos seeds the list, typically from a server-rendered listing.
func WithInitialPhotos(photos []*models.Photo) Option {
	return func(vm *ViewModel) { vm.photos = clonePhotos(photos) }
}

func New(api PhotoAPI, opts ...Option) *ViewModel {
	vm := &ViewModel{
		api:        api,
		closeDelay: DefaultCloseDelay,
		logger:     log.New(os.Stderr, "[Gallery] ", log.LstdFlags),
		photos:     []*models.Photo{},
	}
	for _, opt := range opts {
		opt(vm)
	}
	if vm.notify == nil {
		vm.notify = func(message string) { vm.logger.Println(message) }
	}
	return vm
}

// Photos returns a copy of the current list.
func (vm *ViewModel) Photos() []*models.Photo {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return clonePhotos(vm.photos)
}

// Selected returns a copy of the photo in the viewer, or nil.
func (vm *ViewModel) Selected() *models.Photo {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return clonePhoto(vm.selected)
}

func (vm *ViewModel) Modal() Modal {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.modal
}

// Open shows photo in the viewer.
func (vm *ViewModel) Open(photo *models.Photo) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.cancelPendingClear()
	vm.selected = clonePhoto(photo)
	vm.modal = ModalViewing
}

// OpenAdd shows the add-photo form.
func (vm *ViewModel) OpenAdd() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.modal = ModalAdding
}

// Close hides any modal. The selection is cleared after the close delay.
func (vm *ViewModel) Close() {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.modal = ModalNone
	vm.cancelPendingClear()
	if vm.closeDelay <= 0 {
		vm.selected = nil
		return
	}

	gen := vm.clearGen
	vm.clearTimer = time.AfterFunc(vm.closeDelay, func() {
		vm.mu.Lock()
		defer vm.mu.Unlock()
		if vm.clearGen == gen {
			vm.selected = nil
			vm.clearTimer = nil
		}
	})
}

// cancelPendingClear must be called with mu held.
func (vm *ViewModel) cancelPendingClear() {
	vm.clearGen++
	if vm.clearTimer != nil {
		vm.clearTimer.Stop()
		vm.clearTimer = nil
	}
}

// Add shows a freshly uploaded photo at the top of the list right away,
// then resynchronizes with the server listing.
func (vm *ViewModel) Add(ctx context.Context, photo *models.Photo) error {
	if photo == nil {
		return fmt.Errorf("no photo to add")
	}

	vm.mu.Lock()
	vm.photos = append([]*models.Photo{clonePhoto(photo)}, vm.photos...)
	vm.mu.Unlock()

	return vm.Refresh(ctx)
}

// Delete removes the photo from the list right away, then asks the server
// to delete it. The list is resynchronized either way, which restores the
// photo when the server-side delete failed.
func (vm *ViewModel) Delete(ctx context.Context, id string) error {
	vm.mu.Lock()
	kept := vm.photos[:0:0]
	var removed []removedPhoto
	for i, p := range vm.photos {
		if p.ID == id {
			removed = append(removed, removedPhoto{index: i, photo: p})
			continue
		}
		kept = append(kept, p)
	}
	vm.photos = kept
	vm.mu.Unlock()

	deleteErr := vm.api.DeletePhoto(ctx, id)
	if err := vm.Refresh(ctx); err != nil {
		vm.logger.Printf("Resync after delete of %s failed: %v", id, err)
		if deleteErr != nil {
			vm.restore(removed)
		}
	}

	if deleteErr != nil {
		vm.notify(fmt.Sprintf("Failed to delete photo: %v", deleteErr))
		return deleteErr
	}
	return nil
}

type removedPhoto struct {
	index int
	photo *models.Photo
}

// restore puts optimistically removed photos back at their old positions,
// clamped to the current length.
func (vm *ViewModel) restore(removed []removedPhoto) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for _, r := range removed {
		i := min(r.index, len(vm.photos))
		vm.photos = slices.Insert(vm.photos, i, r.photo)
	}
}

// Refresh replaces the list with the server listing. The current list is
// kept when the listing cannot be fetched.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	photos, err := vm.api.ListPhotos(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh photos: %w", err)
	}

	vm.mu.Lock()
	vm.photos = clonePhotos(photos)
	vm.mu.Unlock()
	return nil
}

func clonePhoto(p *models.Photo) *models.Photo {
	if p == nil {
		return nil
	}
	c := *p
	if p.TechnicalDetails != nil {
		details := *p.TechnicalDetails
		c.TechnicalDetails = &details
	}
	return &c
}

func clonePhotos(photos []*models.Photo) []*models.Photo {
	out := make([]*models.Photo, 0, len(photos))
	for _, p := range photos {
		if p != nil {
			out = append(out, clonePhoto(p))
		}
	}
	return out
}
