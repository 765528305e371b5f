// Команда swgallery гоняет виртуальный API галереи через перехваченного
// HTTP-клиента: list, upload, fetch, get, delete, api. Сетевого сервера
// здесь нет — запросы внутри scope отвечаются локально из стора.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/davay42/sw-gallery/internal/app"
	"github.com/davay42/sw-gallery/internal/domain"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: swgallery <command> [args]

commands:
  list                 list stored images
  upload <file>...     upload local files
  fetch <url>          fetch a remote image and store it
  get <name> [-o out]  print a stored image (or save with -o)
  delete <name>        delete a stored image
  api                  show the endpoint listing

store backend and scope come from the environment (see internal/config).
`)
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	ctx := context.Background()
	a, err := app.Build(ctx)
	if err != nil {
		log.Fatalf("build: %v", err)
	}
	defer a.Close()

	client := a.Client()
	base := a.Scope().String()

	var runErr error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "list":
		runErr = printGET(client, base+"/list.json")
	case "api":
		runErr = printGET(client, base+"/api")
	case "fetch":
		if len(rest) != 1 {
			usage()
		}
		runErr = fetch(client, base, rest[0])
	case "upload":
		if len(rest) == 0 {
			usage()
		}
		runErr = upload(client, base, rest)
	case "get":
		if len(rest) == 0 {
			usage()
		}
		runErr = get(client, a.Scope(), rest)
	case "delete":
		if len(rest) != 1 {
			usage()
		}
		runErr = del(client, a.Scope(), rest[0])
	default:
		usage()
	}
	if runErr != nil {
		log.Fatalf("%s: %v", args[0], runErr)
	}
}

func printGET(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printBody(resp)
}

func fetch(client *http.Client, base, remote string) error {
	body := fmt.Sprintf(`{"url":%q}`, remote)
	resp, err := client.Post(base+"/upload-url", "application/json", strings.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printBody(resp)
}

func upload(client *http.Client, base string, files []string) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		part, err := mw.CreateFormFile("images", filepath.Base(name))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		f.Close()
		if err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	resp, err := client.Post(base+"/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printBody(resp)
}

func get(client *http.Client, scope domain.Scope, args []string) error {
	name := args[0]
	out := ""
	if len(args) == 3 && args[1] == "-o" {
		out = args[2]
	} else if len(args) != 1 {
		usage()
	}

	resp, err := client.Get(scope.FileURL(name))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return printBody(resp)
	}

	dst := io.Writer(os.Stdout)
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		dst = f
	}
	_, err = io.Copy(dst, resp.Body)
	return err
}

func del(client *http.Client, scope domain.Scope, name string) error {
	req, err := http.NewRequest(http.MethodDelete, scope.URL("delete/"+url.PathEscape(name)), nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printBody(resp)
}

func printBody(resp *http.Response) error {
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n%s\n", resp.Status, b)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed")
	}
	return nil
}
