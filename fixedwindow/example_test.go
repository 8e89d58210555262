/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package fixedwindow_test

import (
	"bytes"
	"fmt"
	stdlog "log"
	"time"

	"github.com/acronis/go-appkit/config"

	"github.com/acronis/go-ratelimit/fixedwindow"
)

func Example() {
	cfg := &fixedwindow.Config{
		ReadLimit:  2,
		WriteLimit: 1,
		Window:     config.TimeDuration(time.Second),
	}
	limiter, err := fixedwindow.New(cfg, nil)
	if err != nil {
		stdlog.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		fmt.Println(limiter.TryAcquireRead())
	}

	res := limiter.AcquireWrite()
	fmt.Println(res.Allowed, res.Remaining)
	res = limiter.AcquireWrite()
	fmt.Println(res.Allowed, res.Remaining)

	status := limiter.Status()
	fmt.Println(status.ReadCount, status.WriteCount)

	// Output:
	// true
	// true
	// false
	// true 0
	// false 0
	// 2 1
}

func ExampleNewConfig() {
	cfgData := bytes.NewBufferString(`
rateLimit:
  readLimit: 100
  writeLimit: 25
  window: 30s
`)
	cfg := fixedwindow.NewConfig()
	if err := config.NewDefaultLoader("").LoadFromReader(cfgData, config.DataTypeYAML, cfg); err != nil {
		stdlog.Fatal(err)
	}

	limiter, err := fixedwindow.New(cfg, nil)
	if err != nil {
		stdlog.Fatal(err)
	}

	status := limiter.Status()
	fmt.Println(status.ReadRemaining, status.WriteRemaining)

	// Output:
	// 100 25
}
