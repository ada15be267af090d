package stepwise_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/pkg/domain"
)

// ExampleWorkbench_RunNow builds a two-step pipeline and runs it synchronously.
func ExampleWorkbench_RunNow() {
	ctx := context.Background()
	wb, err := stepwise.New(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer wb.Close()

	ws := wb.Workspace()
	ws.AddGroup()
	if err := wb.SetInput("  hello  "); err != nil {
		log.Fatal(err)
	}

	for _, code := range []string{"return helpers.trim(input);", `return helpers.uppercase(input) + "!";`} {
		step, err := ws.AddStep("")
		if err != nil {
			log.Fatal(err)
		}
		if _, err := ws.UpdateStep(step.ID, domain.StepPatch{Code: &code}); err != nil {
			log.Fatal(err)
		}
	}

	res, err := wb.RunNow(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Output)
	// Output: HELLO!
}
