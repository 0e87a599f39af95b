//go:build js && wasm

// Command cloudwasm runs the cloud entirely in the browser. The page provides
// a #cloud container and, optionally, the dataset as JSON in a
// <script type="application/json" id="nodecloud-data"> element.
package main

import (
	"syscall/js"

	"github.com/recera/nodecloud/internal/dataset"
	"github.com/recera/nodecloud/pkg/components/cloudview"
	"github.com/recera/nodecloud/pkg/nodecloud"
)

var (
	document = js.Global().Get("document")
	console  = js.Global().Get("console")
)

func main() {
	if document.Get("readyState").String() != "loading" {
		start()
	} else {
		var ready js.Func
		ready = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			ready.Release()
			start()
			return nil
		})
		document.Call("addEventListener", "DOMContentLoaded", ready)
	}
	select {}
}

func start() {
	container := document.Call("getElementById", "cloud")
	if container.IsNull() {
		console.Call("error", "nodecloud: no #cloud element")
		return
	}

	opts := nodecloud.DefaultOptions()
	opts.OnSelect = showDetail
	cloud := cloudview.Mount(container, entities(), opts)

	js.Global().Set("nodecloudLabels", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) > 0 {
			cloud.SetShowLabels(args[0].Truthy())
		}
		return nil
	}))
	js.Global().Set("nodecloudStop", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		cloud.Stop()
		return nil
	}))
}

func entities() []nodecloud.Entity {
	el := document.Call("getElementById", "nodecloud-data")
	if el.IsNull() {
		return dataset.Sample()
	}
	list, err := dataset.Parse([]byte(el.Get("textContent").String()), dataset.FormatJSON)
	if err != nil {
		console.Call("error", "nodecloud: bad dataset: "+err.Error())
		return dataset.Sample()
	}
	return list
}

// showDetail loads the server-rendered detail panel when one is served
func showDetail(id string, kind nodecloud.Kind) {
	panel := document.Call("getElementById", "detail")
	if panel.IsNull() {
		console.Call("log", "nodecloud: selected", kind.String(), id)
		return
	}
	url := "/detail/" + kind.String() + "/" + js.Global().Call("encodeURIComponent", id).String()
	var onText, onResponse js.Func
	onText = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		panel.Set("innerHTML", args[0])
		onText.Release()
		return nil
	})
	onResponse = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		onResponse.Release()
		if !args[0].Get("ok").Bool() {
			onText.Release()
			return nil
		}
		return args[0].Call("text").Call("then", onText)
	})
	js.Global().Call("fetch", url).Call("then", onResponse)
}
