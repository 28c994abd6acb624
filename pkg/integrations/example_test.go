package integrations_test

import (
	"fmt"

	"github.com/matzehuels/acknowledge/pkg/integrations"
)

func ExampleNormalizeRepoURL() {
	// Various repository URL formats are normalized to HTTPS
	fmt.Println(integrations.NormalizeRepoURL("git@github.com:user/repo.git"))
	fmt.Println(integrations.NormalizeRepoURL("git://github.com/user/repo"))
	fmt.Println(integrations.NormalizeRepoURL("git+https://github.com/user/repo.git"))
	fmt.Println(integrations.NormalizeRepoURL("https://gitlab.com/group/repo/"))
	// Output:
	// https://github.com/user/repo
	// https://github.com/user/repo
	// https://github.com/user/repo
	// https://gitlab.com/group/repo
}
