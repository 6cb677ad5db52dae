// Command huffpress compresses and decompresses text files with a static
// Huffman code.
//
// Usage:
//
//	huffpress [-single] c <input file> <output file>
//	huffpress [-single] d <input file> <output file>
//
// Compression writes the packed stream to the output file and the code
// table to a ".huff" sidecar next to it; decompression reads both back.
// With -single the packed stream and the code table travel in one archive
// file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/seiflotfy/huffpress"
)

var single = flag.Bool("single", false, "use one archive file instead of a packed file plus .huff sidecar")

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s [-single] <action> <input file> <output file>\n", os.Args[0])
		os.Exit(1)
	}
	action, inputName, outputName := args[0], args[1], args[2]

	var err error
	switch action {
	case "c":
		err = compressFile(inputName, outputName)
	case "d":
		err = decompressFile(inputName, outputName)
	default:
		err = fmt.Errorf("invalid action %q: use 'c' for compress and 'd' for decompress", action)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func compressFile(inputName, outputName string) error {
	input, err := os.ReadFile(inputName)
	if err != nil {
		return err
	}

	if *single {
		archive, err := huffpress.NewEncoder().CompressArchive(input)
		if err != nil {
			return err
		}
		f, err := os.Create(outputName)
		if err != nil {
			return err
		}
		if _, err := archive.WriteTo(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	} else {
		packed, table, err := huffpress.Compress(input)
		if err != nil {
			return err
		}
		if err := os.WriteFile(outputName, packed, 0o644); err != nil {
			return err
		}
		if err := os.WriteFile(outputName+".huff", table, 0o644); err != nil {
			return err
		}
	}

	outputSize, err := fileSize(outputName)
	if err != nil {
		return err
	}
	fmt.Println("Compression completed!")
	fmt.Printf("Original Size: %d bytes\n", len(input))
	fmt.Printf("Compressed Size: %d bytes\n", outputSize)
	if len(input) > 0 {
		percent := 100.0 * (1 - float64(outputSize)/float64(len(input)))
		fmt.Printf("Compression Percentage: %.2f%%\n", percent)
	}
	return nil
}

func decompressFile(inputName, outputName string) error {
	var output []byte
	if *single {
		f, err := os.Open(inputName)
		if err != nil {
			return err
		}
		defer f.Close()

		var archive huffpress.Archive
		if _, err := archive.ReadFrom(f); err != nil {
			return err
		}
		output, err = archive.Decompress()
		if err != nil {
			return err
		}
	} else {
		packed, err := os.ReadFile(inputName)
		if err != nil {
			return err
		}
		table, err := os.ReadFile(inputName + ".huff")
		if err != nil {
			return err
		}
		output, err = huffpress.Decompress(packed, table)
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(outputName, output, 0o644); err != nil {
		return err
	}

	inputSize, err := fileSize(inputName)
	if err != nil {
		return err
	}
	fmt.Println("Decompression completed!")
	fmt.Printf("Compressed Size: %d bytes\n", inputSize)
	fmt.Printf("Decompressed Size: %d bytes\n", len(output))
	if inputSize > 0 {
		percent := 100.0 * (float64(len(output))/float64(inputSize) - 1)
		fmt.Printf("Decompression Increase Percentage: %.2f%%\n", percent)
	}
	return nil
}

func fileSize(name string) (int64, error) {
	info, err := os.Stat(name)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
