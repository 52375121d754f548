package century

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign_KnownVector(t *testing.T) {
	params := map[string]string{
		"fid":  "1001",
		"time": "1700000000000",
	}

	// md5("fid=1001&time=1700000000000" + default salt)
	assert.Equal(t, "7785c0933ee3ac75a7dbb3045acab110", Sign(params, DefaultSalt))
}

func TestSign_RedeemVector(t *testing.T) {
	params := map[string]string{
		"fid":          "1001",
		"cdk":          "GIFT1",
		"captcha_code": "",
		"time":         "1700000000000",
	}

	assert.Equal(t, "76ed74026a5cccacdf0365a9d486591a", Sign(params, DefaultSalt))
}

func TestSign_KeysAreSorted(t *testing.T) {
	// md5("a=1&b=2" + "s")
	assert.Equal(t, "48ede480f182f325db2c33f8d705c464", Sign(map[string]string{"b": "2", "a": "1"}, "s"))
	assert.Equal(t, Sign(map[string]string{"a": "1", "b": "2"}, "s"), Sign(map[string]string{"b": "2", "a": "1"}, "s"))
}

func TestVerifySign(t *testing.T) {
	params := map[string]string{"fid": "1001", "time": "1700000000000"}
	sign := Sign(params, DefaultSalt)

	assert.True(t, VerifySign(params, sign, DefaultSalt))
	assert.False(t, VerifySign(params, sign, "other-salt"))
	assert.False(t, VerifySign(map[string]string{"fid": "1002", "time": "1700000000000"}, sign, DefaultSalt))
}
