// Package loader installs a sandbox program into the memory of a running
// device.
//
// # Overview
//
// This package orchestrates the install sequence:
//   - Loading the symbol table and both images, resolving required symbols
//   - Disabling the sandbox the device is currently running
//   - Waiting a short quiescence interval
//   - Uploading the instruction and data images in 224-byte chunks
//   - Installing the new mode pointer
//
// # Basic Usage
//
//	sess, err := device.Open(device.DefaultVendorID, device.DefaultProductID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close()
//
//	seq := loader.NewSequencer(sess, loader.DefaultSources())
//	if err := seq.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Uploading a Single Image
//
//	up := loader.NewUploader(sess)
//	err := up.Upload(ctx, protocol.Image{Name: "blob", Base: 0x40380000, Data: blob})
//
// Each chunk gets its own budget of MaxAttempts sends (default 11: the first
// try plus 10 retries). A send fails when the transport errors or accepts
// fewer bytes than the frame holds.
//
// # Configuration Options
//
//	seq := loader.NewSequencer(sess, src,
//	    loader.WithProgressCallback(progressFunc),
//	    loader.WithLogger(logger),
//	    loader.WithMaxAttempts(11),
//	    loader.WithQuiescence(20*time.Millisecond),
//	    loader.WithInstallTarget(loader.InstallMode),
//	)
//
// # Error Handling
//
// Run returns a *SequenceError naming the failed step. The underlying error
// is reachable with errors.As:
//   - *fs.PathError: a source file could not be read (StepLoad)
//   - *symtab.MissingSymbolError: a required symbol is absent (StepResolve)
//   - *UploadFailedError: a chunk exhausted its retry budget
//   - *device.CommandError: a mode pointer frame was not accepted
//
// Load and resolve failures happen before any frame is sent.
//
// # Known Limitation
//
// Disable and upload are not transactional. A run that fails while
// uploading leaves the previous sandbox disabled and its memory partially
// overwritten. The protocol has no read-back, so the only recovery is to
// run the whole sequence again.
package loader
