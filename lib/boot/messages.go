package boot

import (
	"fmt"

	"github.com/c2h5oh/datasize"
)

const banner = `
           ..**********************************************..         
       .*%%%%%%*******************************************%%%%%*.     
     .*%%%*.                                                .*%%%*.   
    .%%%*.   *%%% %%%%%%%%%%%%%%%%%%%%%%%%%*  *%%%%%%%%%%%*    *%%%*  
   .%%%.     %%%%  *%%%%%%%%%%%%%%%%%%%%%%%% *%%%%%%%%%%%%%.    .%%%. 
   %%%*      %%%%                       %%%%                     *%%% 
  .%%%.      %%%%            ******%%%%%%%%% %%%%%%%%%%%%%*.     .%%%.
  .%%%.      %%%%            %%%%%%%%%****** %%%%%%%%%%%***.     .%%%.
   %%%*      %%%%*           %%%%                                *%%% 
   .%%%*.    %%%%%%%%%%%%%%  %%%%%%%%%%%%%%%%%%%%%%%%%%%%%%.    .%%%. 
    .%%%*    *%%%%%%%%%%%%*  *%%%%%%%%%%%%%%%%%%%%%%%%%%%%*   .*%%%.  
     .*%%%*.                                                .*%%%*.   
       .*%%%%%%*******************************************%%%%%*.     
           ..**********************************************..         

             so much depends            glazed with rain              
             upon                       water                         

             a red wheel                beside the white              
             barrow                     chickens                      

  *** The Red Wheelbarrow Init - L2E OS v0.1 "TEMPLE DOS"             
  *** (c) 2023 Vulcan Ignis                                           

`

const notInitText = "  *******************************************\n" +
	"  ***   Guru Meditation >>> ERROR 01 <<<  ***\n" +
	"  ***   Not PID 1. You are not special!   ***\n" +
	"  *******************************************\n"

const forkFailedText = "  *******************************************\n" +
	"  ***   Guru Meditation >>> ERROR 02 <<<  ***\n" +
	"  ***   The reaper could not be summoned  ***\n" +
	"  *******************************************\n"

const greeting = "  *** Info: Kernel bro handed the castle to me...\n" +
	"  *** Action: Transcending boot...\n" +
	"  *** Info: The Guru awakened...\n"

const handoffFailedText = "  *** IF YOU ARE SEEING THIS, SOMETHING IS AWRY ***\n" +
	"  *** GURU MEDITATION! YOGA MAT ON FIRE! GURU DEMOTED TO FAKIR... BED OF NAILS TOO HOT... PANIC! DRAMA! ***\n"

func referenceText(uptime int64) string {
	return fmt.Sprintf("  ***  Reference >>> %ds <<< into boot... ***\n", uptime) +
		"  *******************************************\n"
}

func memoryText(free, total uint64) string {
	return fmt.Sprintf("  *** Info: Memory >>> %s free of %s <<<\n",
		datasize.ByteSize(free).HR(), datasize.ByteSize(total).HR())
}

func bootedText(uptime int64) string {
	return fmt.Sprintf("  *** Booted in >>> %d <<< seconds ***\n", uptime) +
		"  *** Note: Trancended Boot. Dropping to Temple DOS Shell...\n" +
		"  *** Info: Load High Speed Stopwatch CLI by typing l2e\n" +
		"  *** Info: Load LAIRS After Egypt GUI by typing l2eterm\n" +
		"  *** Note: We are not auto loading l2e/l2eterm as we are auto\n" +
		"  ***       killing the l2e process started by kernel module\n" +
		"  ***       See module status with \"astu call_trans_opt\" \n" +
		"  *** Info: CTRL+F & CTRL+G get's you out if in qemu...\n\n"
}
