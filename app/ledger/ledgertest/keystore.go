package ledgertest

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
)

// NewKeyStore opens a key store with light scrypt parameters in a temporary
// directory removed when the test finishes.
func NewKeyStore(t testing.TB) *keystore.KeyStore {
	dir, err := ioutil.TempDir("", "kincore-keystore")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP)
}
