package usecase_test

import (
	"testing"

	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistUsecase_AddListRemove(t *testing.T) {
	f := newFixture(t)
	p1 := f.product(t, "Avocado", "1.99", 40)
	p2 := f.product(t, "Olive Oil", "12.99", 8)
	uc := usecase.NewWishlistUsecase(f.st)

	it, err := uc.Add(bg, f.userID, p1.ID)
	require.NoError(t, err)
	require.NotNil(t, it.Product)
	assert.Equal(t, "Avocado", it.Product.Name)

	_, err = uc.Add(bg, f.userID, p2.ID)
	require.NoError(t, err)

	list, err := uc.List(bg, f.userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// 新しい順
	assert.Equal(t, p2.ID, list[0].ProductID)
	assert.Equal(t, p1.ID, list[1].ProductID)

	require.NoError(t, uc.Remove(bg, f.userID, p1.ID))
	err = uc.Remove(bg, f.userID, p1.ID)
	assertKind(t, err, usecase.KindNotFound)
	assert.Contains(t, err.Error(), "Item not found in wishlist")

	list, err = uc.List(bg, f.userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestWishlistUsecase_AddDuplicate(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Avocado", "1.99", 40)
	uc := usecase.NewWishlistUsecase(f.st)

	_, err := uc.Add(bg, f.userID, p.ID)
	require.NoError(t, err)

	_, err = uc.Add(bg, f.userID, p.ID)
	assertKind(t, err, usecase.KindConflict)
	assert.Contains(t, err.Error(), "Product already in wishlist")

	// 他のユーザーは別
	_, err = uc.Add(bg, f.other, p.ID)
	require.NoError(t, err)
}

func TestWishlistUsecase_AddErrors(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Avocado", "1.99", 40)
	uc := usecase.NewWishlistUsecase(f.st)

	_, err := uc.Add(bg, f.userID, 0)
	assertKind(t, err, usecase.KindValidation)

	_, err = uc.Add(bg, f.userID, 999)
	assertKind(t, err, usecase.KindNotFound)

	_, err = uc.Add(bg, 999, p.ID)
	assertKind(t, err, usecase.KindNotFound)

	f.st.SoftDeleteProduct(p.ID)
	_, err = uc.Add(bg, f.userID, p.ID)
	assertKind(t, err, usecase.KindNotFound)
}

func TestWishlistUsecase_ListHidesRemovedProducts(t *testing.T) {
	f := newFixture(t)
	p1 := f.product(t, "Avocado", "1.99", 40)
	p2 := f.product(t, "Olive Oil", "12.99", 8)
	uc := usecase.NewWishlistUsecase(f.st)

	_, err := uc.Add(bg, f.userID, p1.ID)
	require.NoError(t, err)
	_, err = uc.Add(bg, f.userID, p2.ID)
	require.NoError(t, err)

	f.st.SoftDeleteProduct(p1.ID)

	list, err := uc.List(bg, f.userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p2.ID, list[0].ProductID)
}

func TestWishlistUsecase_Clear(t *testing.T) {
	f := newFixture(t)
	p1 := f.product(t, "Avocado", "1.99", 40)
	p2 := f.product(t, "Olive Oil", "12.99", 8)
	uc := usecase.NewWishlistUsecase(f.st)

	for _, id := range []int64{p1.ID, p2.ID} {
		_, err := uc.Add(bg, f.userID, id)
		require.NoError(t, err)
	}
	_, err := uc.Add(bg, f.other, p1.ID)
	require.NoError(t, err)

	n, err := uc.Clear(bg, f.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err := uc.List(bg, f.other)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	n, err = uc.Clear(bg, f.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
