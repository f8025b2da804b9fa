// Package transfer implements resumable FTP downloads and uploads.
//
// An Engine owns one Session. Download and Upload do their remote and local
// probing synchronously, hand the byte copy to a single background goroutine
// and return a *Progress immediately. The goroutine is the only writer of the
// handle; any number of goroutines may poll it.
//
//	engine := transfer.NewEngine(session, transfer.WithChunkSize(32*1024))
//	p, err := engine.Download(ctx, "/pub/big.iso", "big.iso")
//	if err != nil {
//	    return err
//	}
//	<-p.Done()
//	fmt.Println(p.Status(), p.Percentage())
//
// Partially written local files are never removed, so calling Download again
// with the same arguments resumes from the local length.
package transfer
