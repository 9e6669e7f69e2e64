// Package config provides configuration parsing for navrouter.
//
// The configuration is stored in navrouter.json. Every field is optional;
// missing fields take the defaults below.
//
// # Configuration File Structure
//
//	{
//	  "origin": "https://example.com",
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "wsPath": "/_nav/ws",
//	    "metricsPath": "/metrics"
//	  },
//	  "routes": {
//	    "manifest": "routes.json",
//	    "allowPartial": false
//	  },
//	  "content": {
//	    "dir": "content",
//	    "s3": {"bucket": "", "prefix": "", "region": "", "endpoint": ""}
//	  },
//	  "log": {"level": "info", "format": "text"},
//	  "telemetry": {"namespace": "navrouter", "metrics": true, "tracing": false}
//	}
//
// NAVROUTER_PORT, NAVROUTER_ORIGIN and NAVROUTER_LOG_LEVEL override the
// file after it is loaded.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
