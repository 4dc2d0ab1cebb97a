package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/qlimitd/qlimitd/internal/config"
	"github.com/urfave/cli"
)

func authSet(ctx *cli.Context) error {
	user := ctx.Args().First()
	if user == "" {
		return printErrWithCmdHelp(ctx, errors.New("username is required"))
	}
	fmt.Printf("Password for %s: ", user)
	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		printRuntimeErr(ctx, "auth", "read_password", err)
		return nil
	}
	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		printRuntimeErr(ctx, "auth", "read_password", errors.New("password is empty"))
		return nil
	}
	if err = config.SetPassword(user, password); err != nil {
		printRuntimeErr(ctx, "auth", "keyring_set", err)
		return nil
	}
	fmt.Println("Password stored in the OS keyring")
	return nil
}

func authDelete(ctx *cli.Context) error {
	user := ctx.Args().First()
	if user == "" {
		return printErrWithCmdHelp(ctx, errors.New("username is required"))
	}
	if err := config.DeletePassword(user); err != nil {
		printRuntimeErr(ctx, "auth", "keyring_delete", err)
		return nil
	}
	fmt.Println("Password removed from the OS keyring")
	return nil
}
