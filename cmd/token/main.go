// Command token issues an access token for local testing, signed with the
// configured JWT_SECRET_KEY.
//
//	go run ./cmd/token -employee 0190a001-0000-7000-8000-000000000001 -role admin
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
)

func main() {
	employeeID := flag.String("employee", "", "employee id to act as")
	role := flag.String("role", string(employee.RoleStaff), "admin or staff")
	flag.Parse()

	if *employeeID == "" {
		fmt.Fprintln(os.Stderr, "-employee is required")
		os.Exit(2)
	}
	if *role != string(employee.RoleAdmin) && *role != string(employee.RoleStaff) {
		fmt.Fprintln(os.Stderr, "-role must be admin or staff")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	token, _, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).
		GenerateAccessToken(*employeeID, employee.Role(*role))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
