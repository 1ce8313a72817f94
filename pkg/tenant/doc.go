// Package tenant builds the tenant core: the database, the administrative
// role, the compute warehouses and the service user every other unit is
// scoped under, plus the base grants tying them together.
//
// # Basic Usage
//
//	g := graph.New()
//	core, err := tenant.New(g, tenant.Args{
//	    Name: "acme",
//	    Env:  "PROD",
//	    Warehouses: []tenant.WarehouseArgs{
//	        {Name: "wh1", Default: true},
//	    },
//	})
//	if err != nil {
//	    var cfgErr *tenant.ConfigError
//	    if errors.As(err, &cfgErr) {
//	        log.Fatalf("tenant %s: %v", cfgErr.Tenant, cfgErr.Err)
//	    }
//	    log.Fatal(err)
//	}
//	ref, _ := core.DefaultWarehouse()
//	fmt.Println(ref.Name) // ACME_WH1
package tenant
