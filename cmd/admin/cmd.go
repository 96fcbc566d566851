package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"syscall"

	"golang.org/x/term"
	"gorm.io/gorm"

	"github.com/sitaurs/apm-portal-sub000/internal/model"
	"github.com/sitaurs/apm-portal-sub000/internal/repository"
	"github.com/sitaurs/apm-portal-sub000/internal/service"
)

var (
	readPasswordFunc = term.ReadPassword // 测试中替换

	errHelp            = errors.New("help provided")
	errPasswordTooWeak = errors.New("密码长度须为 8-72 个字符")
)

type commandLine struct {
	users   repository.UserRepository
	migrate func() error
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -email EMAIL -nama NAMA [-role admin|super_admin] - 创建或更新管理员，随后输入密码")
	fmt.Println("  resetpassword -email EMAIL - 重置管理员密码，随后输入密码")
	fmt.Println("  migrate - 执行数据库迁移")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "管理员邮箱")
	addUserNama := addUserCmd.String("nama", "", "管理员姓名")
	addUserRole := addUserCmd.String("role", model.RoleAdmin, "admin 或 super_admin")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "管理员邮箱")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		role := strings.TrimSpace(*addUserRole)
		if *addUserEmail == "" || *addUserNama == "" || (role != model.RoleAdmin && role != model.RoleSuperAdmin) {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		return cli.addUser(*addUserNama, *addUserEmail, role, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)

	case "migrate":
		return cli.migrate()

	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) < 8 || len(pwd) > 72 {
		return "", errPasswordTooWeak
	}
	return string(pwd), nil
}

// addUser 邮箱已存在时只更新密码，否则创建管理员
func (cli *commandLine) addUser(nama, email, role, pwd string) error {
	ctx := context.Background()
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := service.HashPassword(pwd)
	if err != nil {
		return err
	}

	existing, err := cli.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return cli.users.UpdatePassword(ctx, existing.ID, hash)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return cli.users.Create(ctx, &model.User{
			Nama:         strings.TrimSpace(nama),
			Email:        email,
			PasswordHash: hash,
			Role:         role,
		})
	default:
		return err
	}
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	usr, err := cli.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	hash, err := service.HashPassword(pwd)
	if err != nil {
		return err
	}
	return cli.users.UpdatePassword(ctx, usr.ID, hash)
}
