package wallet

import (
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
)

func TestReceiptReverted(t *testing.T) {
	assert.False(t, Receipt{Status: types.ReceiptStatusSuccessful}.Reverted())
	assert.True(t, Receipt{Status: types.ReceiptStatusFailed}.Reverted())
}
